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

import "time"

const amzDateLayout = "20060102T150405Z"

// Clock produces the instant a signing operation is anchored to. The
// default is time.Now; tests inject a fixed clock so signing is
// deterministic (spec §8 invariant 1).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a Clock that always returns the same instant, used by the
// canonical-sign test vectors in spec §8.
type FixedClock struct{ At time.Time }

func (f FixedClock) Now() time.Time { return f.At }

// amzDate formats t in the canonical "YYYYMMDDTHHMMSSZ" AMZ date form.
func amzDate(t time.Time) string {
	return t.UTC().Format(amzDateLayout)
}

// yyyymmdd formats t's date component only, used in the credential scope
// and as the signing-key cache's per-day derivation input.
func yyyymmdd(t time.Time) string {
	return t.UTC().Format("20060102")
}

// dayBoundary floors t to the start of its UTC day, the signing-key
// cache's numericDay field (spec §3 SigningKeyCacheEntry).
func dayBoundary(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}
