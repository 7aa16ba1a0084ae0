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

// Package s3stats tracks a rolling per-operation transfer-rate estimate, the
// in-process replacement for the teacher's stats_manager pipe: instead of
// publishing JSON stat events to an external monitor process over a named
// pipe, it keeps a small ring buffer of recent bytes/sec samples and answers
// the host's progress callback with a mean/stddev computed with
// montanaflynn/stats, the same library the teacher vendors for this.
package s3stats

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

const windowSize = 32

// Throughput accumulates recent transfer-rate samples for one logical
// operation (a download, or a whole multipart upload) and reports a rolling
// mean/stddev in bytes/sec.
type Throughput struct {
	mu      sync.Mutex
	samples []float64
	last    time.Time
}

func New() *Throughput {
	return &Throughput{samples: make([]float64, 0, windowSize), last: time.Now()}
}

// Observe records that n bytes were transferred since the previous
// Observe/New call.
func (t *Throughput) Observe(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(t.last).Seconds()
	t.last = now
	if elapsed <= 0 || n <= 0 {
		return
	}

	rate := float64(n) / elapsed
	if len(t.samples) == windowSize {
		t.samples = t.samples[1:]
	}
	t.samples = append(t.samples, rate)
}

// Snapshot returns the current mean and standard deviation of observed
// bytes/sec rates. Both are zero until at least one sample is observed.
func (t *Throughput) Snapshot() (meanBytesPerSec, stdDev float64) {
	t.mu.Lock()
	samples := append([]float64(nil), t.samples...)
	t.mu.Unlock()

	if len(samples) == 0 {
		return 0, 0
	}
	mean, _ := stats.Mean(samples)
	sd, _ := stats.StandardDeviation(samples)
	return mean, sd
}
