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

// Package s3multipart is the multipart upload coordinator: a bounded
// concurrent pipeline of part uploads with backpressure, retry and
// rollback, driven by whatever producer feeds it bytes.
package s3multipart

import "fmt"

const (
	// MaxQueueSize is the hard ceiling on in-flight parts, independent of
	// options.QueueSize; it is also the width of the availableMask bitmap.
	MaxQueueSize = 64

	minQueueSize = 1
	maxQueueSize = 255

	minPartSizeMiB = 5
	maxPartSizeMiB = 5120

	minRetry = 0
	maxRetry = 255

	mib = 1 << 20

	// MaxSingleUploadSize bounds the single-file path: a buffer this large
	// or larger always takes the multipart path instead.
	MaxSingleUploadSize = int64(maxPartSizeMiB) * mib
)

// Options is MultiPartUploadOptions from the data model: QueueSize is the
// maximum number of in-flight parts, PartSize is the byte size of each part
// (before the final, possibly-shorter, part), Retry is the per-request retry
// budget shared by part PUTs, the commit POST and the abort DELETE.
type Options struct {
	QueueSize int
	PartSize  int64
	Retry     int
}

// DefaultOptions mirrors what most S3-compatible clients use when the host
// supplies no overrides: a modest pipeline depth and an 8 MiB part size,
// above AWS's 5 MiB part-size floor.
func DefaultOptions() Options {
	return Options{QueueSize: 4, PartSize: 8 * mib, Retry: 3}
}

// Validate checks and clamps Options: a QueueSize outside [1, 255] is
// rejected with an error (values above 255 are not capped), and a QueueSize
// in (64, 255] is clamped to the MaxQueueSize=64 hard ceiling; PartSize (given in
// bytes) must resolve to a whole-MiB value in [5, 5120] MiB; Retry must lie
// in [0, 255]. Note the source material's range checks read as `queueSize >
// 255` / `retry > 255` with no lower bound, an AND-vs-OR slip that this
// implementation corrects by treating both endpoints as genuine bounds
// (queueSize/retry ∉ [min,max] is rejected, not just the upper overflow).
func (o *Options) Validate() error {
	if o.QueueSize < minQueueSize || o.QueueSize > maxQueueSize {
		return fmt.Errorf("queueSize %d out of range [%d, %d]", o.QueueSize, minQueueSize, maxQueueSize)
	}
	if o.QueueSize > MaxQueueSize {
		o.QueueSize = MaxQueueSize
	}

	partMiB := o.PartSize / mib
	if o.PartSize%mib != 0 || partMiB < minPartSizeMiB || partMiB > maxPartSizeMiB {
		return fmt.Errorf("partSize %d bytes must be a whole MiB value in [%d, %d] MiB", o.PartSize, minPartSizeMiB, maxPartSizeMiB)
	}

	if o.Retry < minRetry || o.Retry > maxRetry {
		return fmt.Errorf("retry %d out of range [%d, %d]", o.Retry, minRetry, maxRetry)
	}

	return nil
}
