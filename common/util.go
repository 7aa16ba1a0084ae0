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

package common

import (
	"sync"
	"sync/atomic"
)

// ThreadSafe Bitmap Implementation
type BitMap64 uint64

// Set : Set the given bit in bitmap
// Return true if the bit was not set and was set by this call, false if the bit was already set.
func (bm *BitMap64) Set(bit uint64) bool {
	for {
		loaded := atomic.LoadUint64((*uint64)(bm))
		if (loaded & (1 << bit)) != 0 {
			// Bit already set.
			return false
		}
		newValue := loaded | (1 << bit)
		if atomic.CompareAndSwapUint64((*uint64)(bm), loaded, newValue) {
			// Bit was set successfully.
			return true
		}
	}
}

// Clear : Clear the given bit from bitmap
// Return true if the bit is set and cleared by this call, false if the bit was already cleared.
func (bm *BitMap64) Clear(bit uint64) bool {
	for {
		loaded := atomic.LoadUint64((*uint64)(bm))
		if (loaded & (1 << bit)) == 0 {
			// Bit already cleared.
			return false
		}
		newValue := loaded &^ (1 << bit)
		if atomic.CompareAndSwapUint64((*uint64)(bm), loaded, newValue) {
			// Bit was cleared successfully.
			return true
		}
	}
}

// FindFirstSet scans bits [0, limit) for the lowest-numbered zero bit, sets
// it atomically, and returns it. This is the multipart coordinator's
// backpressure primitive: a free slot in availableMask, or ok=false when all
// slots in [0, limit) are occupied and the producer must be told to wait.
func (bm *BitMap64) FindFirstSet(limit uint64) (bit uint64, ok bool) {
	if limit > 64 {
		limit = 64
	}
	for i := uint64(0); i < limit; i++ {
		if bm.Set(i) {
			return i, true
		}
	}
	return 0, false
}

// PopCount returns the number of set bits. The multipart coordinator uses it
// to check that no slot is still occupied before it commits.
func (bm *BitMap64) PopCount() int {
	v := atomic.LoadUint64((*uint64)(bm))
	count := 0
	for v != 0 {
		count++
		v &= v - 1
	}
	return count
}

// KeyedMutex hands out a *sync.Mutex per string key, creating it on first
// use. The multipart coordinator keys one by destination path so that two
// logical uploads to the same object key serialize against each other,
// while uploads to different keys never contend on the same lock.
type KeyedMutex struct {
	mutexes sync.Map // Zero value is empty and ready for use
}

func (m *KeyedMutex) GetLock(key string) *sync.Mutex {
	value, _ := m.mutexes.LoadOrStore(key, &sync.Mutex{})
	mtx := value.(*sync.Mutex)
	return mtx
}
