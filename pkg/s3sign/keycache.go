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

package s3sign

import (
	"sync"
	"time"

	"github.com/vibhansa-msft/tlru"
)

// keyCacheCapacity bounds the number of distinct (region, service, secret)
// chains the process-wide cache tracks at once; a host juggling many
// buckets/regions/rotated secrets still only ever needs a handful of live
// entries since old-day entries expire on their own.
const keyCacheCapacity = 256

// signingKeyCacheEntry is spec §3's SigningKeyCacheEntry: the day boundary
// the key was derived for, plus the 32-byte derived kSigning.
type signingKeyCacheEntry struct {
	numericDay int64
	derivedKey [32]byte
}

// SigningKeyCache maps (day, region, service, secret) to a derived kSigning,
// per spec §4.3. It is process-global and backed by vibhansa-msft/tlru, a
// time-aware LRU the teacher already depends on for its own caching
// components. Every entry expires 24 hours after it is stored, and Get also
// treats an entry whose numericDay is not the current UTC day as a miss.
type SigningKeyCache struct {
	once  sync.Once
	cache *tlru.Cache[string, signingKeyCacheEntry]
}

var defaultCache SigningKeyCache

func (c *SigningKeyCache) init() {
	c.once.Do(func() {
		ttl := tlru.TTL(24 * time.Hour)
		cache, err := tlru.New[string, signingKeyCacheEntry](ttl, keyCacheCapacity, nil, time.Minute)
		if err != nil {
			// A cache that can never be constructed degrades to "always
			// miss"; callers still get a correct (just uncached) key.
			cache = nil
		}
		c.cache = cache
	})
}

// compositeKey is region ∥ service ∥ secretAccessKey, the cache key spec §4.3
// specifies (the day boundary is stored in the entry's numericDay instead
// of being part of the string key, so a new day's Put replaces the old
// entry under the same key rather than adding a second one).
func compositeKey(region, service, secret string) string {
	return region + "\x00" + service + "\x00" + secret
}

// Get returns the cached kSigning for (region, service, secret) if present
// and still within today's UTC day, per the "only entries for the current
// day are useful" invariant.
func (c *SigningKeyCache) Get(region, service, secret string, now time.Time) ([32]byte, bool) {
	c.init()
	if c.cache == nil {
		return [32]byte{}, false
	}
	entry, ok := c.cache.Get(compositeKey(region, service, secret))
	if !ok || entry.numericDay != dayBoundary(now) {
		return [32]byte{}, false
	}
	return entry.derivedKey, true
}

// Put caches a freshly derived kSigning. Concurrent Put calls for the same
// key are safe; last-writer-wins is acceptable since all derivations for
// the same day+secret are equivalent (spec §4.3).
func (c *SigningKeyCache) Put(region, service, secret string, now time.Time, key [32]byte) {
	c.init()
	if c.cache == nil {
		return
	}
	_ = c.cache.Add(compositeKey(region, service, secret), signingKeyCacheEntry{
		numericDay: dayBoundary(now),
		derivedKey: key,
	})
}

// deriveSigningKey implements the SigV4 key-derivation chain from spec §4.3:
// kDate -> kRegion -> kService -> kSigning.
func deriveSigningKey(h Hasher, secret, date, region, service string) [32]byte {
	kDate := h.HMACSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := h.HMACSHA256(kDate[:], []byte(region))
	kService := h.HMACSHA256(kRegion[:], []byte(service))
	kSigning := h.HMACSHA256(kService[:], []byte("aws4_request"))
	return kSigning
}

// SigningKey returns the cached or freshly derived kSigning for
// (secret, region, "s3") at instant now, populating the cache on miss.
func (c *SigningKeyCache) SigningKey(h Hasher, secret, region string, now time.Time) [32]byte {
	const service = "s3"
	if key, ok := c.Get(region, service, secret, now); ok {
		return key
	}
	key := deriveSigningKey(h, secret, yyyymmdd(now), region, service)
	c.Put(region, service, secret, now, key)
	return key
}
