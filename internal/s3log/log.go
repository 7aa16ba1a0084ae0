/*
   Licensed under the MIT License <http://opensource.org/licenses/MIT>.

   Copyright © 2023-2026 Seagate Technology LLC and/or its Affiliates
   Copyright © 2020-2026 Microsoft Corporation. All rights reserved.

   Permission is hereby granted, free of charge, to any person obtaining a copy
   of this software and associated documentation files (the "Software"), to deal
   in the Software without restriction, including without limitation the rights
   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
   copies of the Software, and to permit persons to whom the Software is
   furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in all
   copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
   SOFTWARE
*/

// Package s3log is the leveled logger every other package in this module
// logs through. The core is meant to be embedded in a host runtime, so the
// default Logger writes to stderr but any host can install its own via
// SetLogger - mirroring the teacher's pluggable Logger interface, without
// its syslog/Windows event-log backends which have no embedding analog here.
package s3log

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

type Level int32

const (
	LevelCrit Level = iota
	LevelErr
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger is the interface a host runtime can implement to route core log
// lines into its own logging pipeline instead of stderr.
type Logger interface {
	Log(level Level, format string, args ...interface{})
}

// SilentLogger discards everything. Useful when a host embeds the core and
// has no interest in its diagnostic output.
type SilentLogger struct{}

func (SilentLogger) Log(Level, string, ...interface{}) {}

type stderrLogger struct {
	std *log.Logger
}

func (l *stderrLogger) Log(level Level, format string, args ...interface{}) {
	l.std.Printf("[%s] %s", levelTag(level), fmt.Sprintf(format, args...))
}

func levelTag(l Level) string {
	switch l {
	case LevelCrit:
		return "CRIT"
	case LevelErr:
		return "ERR "
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DBG "
	case LevelTrace:
		return "TRC "
	default:
		return "????"
	}
}

var (
	mu          sync.RWMutex
	active      Logger = &stderrLogger{std: log.New(os.Stderr, "", log.LstdFlags)}
	activeLevel        = int32(LevelInfo)
)

// SetLogger installs a host-provided Logger. Passing nil restores the
// default stderr logger.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		active = &stderrLogger{std: log.New(os.Stderr, "", log.LstdFlags)}
		return
	}
	active = l
}

// SetLevel bounds which levels actually reach the installed Logger; calls
// above the configured level are dropped before formatting their arguments.
func SetLevel(l Level) {
	atomic.StoreInt32(&activeLevel, int32(l))
}

func emit(level Level, format string, args ...interface{}) {
	if int32(level) > atomic.LoadInt32(&activeLevel) {
		return
	}
	mu.RLock()
	l := active
	mu.RUnlock()
	l.Log(level, format, args...)
}

func Crit(format string, args ...interface{})  { emit(LevelCrit, format, args...) }
func Err(format string, args ...interface{})   { emit(LevelErr, format, args...) }
func Warn(format string, args ...interface{})  { emit(LevelWarn, format, args...) }
func Info(format string, args ...interface{})  { emit(LevelInfo, format, args...) }
func Debug(format string, args ...interface{}) { emit(LevelDebug, format, args...) }
func Trace(format string, args ...interface{}) { emit(LevelTrace, format, args...) }
