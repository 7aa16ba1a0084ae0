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

package s3multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsQueueSizeToHardCeiling(t *testing.T) {
	opts := Options{QueueSize: 200, PartSize: 5 * mib, Retry: 3}
	assert.NoError(t, opts.Validate())
	assert.Equal(t, MaxQueueSize, opts.QueueSize)
}

func TestValidateRejectsQueueSizeOutOfRange(t *testing.T) {
	opts := Options{QueueSize: 0, PartSize: 5 * mib, Retry: 0}
	assert.Error(t, opts.Validate())

	opts = Options{QueueSize: 256, PartSize: 5 * mib, Retry: 0}
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsPartSizeOutOfRange(t *testing.T) {
	opts := Options{QueueSize: 4, PartSize: 4 * mib, Retry: 0}
	assert.Error(t, opts.Validate())

	opts = Options{QueueSize: 4, PartSize: 5121 * mib, Retry: 0}
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsNonWholeMiBPartSize(t *testing.T) {
	opts := Options{QueueSize: 4, PartSize: 5*mib + 1, Retry: 0}
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsRetryOutOfRange(t *testing.T) {
	opts := Options{QueueSize: 4, PartSize: 5 * mib, Retry: 256}
	assert.Error(t, opts.Validate())

	opts = Options{QueueSize: 4, PartSize: 5 * mib, Retry: -1}
	assert.Error(t, opts.Validate())
}

func TestValidateAcceptsBoundaryValues(t *testing.T) {
	opts := Options{QueueSize: 1, PartSize: 5 * mib, Retry: 0}
	assert.NoError(t, opts.Validate())

	opts = Options{QueueSize: 255, PartSize: 5120 * mib, Retry: 255}
	assert.NoError(t, opts.Validate())
	assert.Equal(t, MaxQueueSize, opts.QueueSize)
}
