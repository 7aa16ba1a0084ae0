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

package s3client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWithBodyParsesXML(t *testing.T) {
	body := []byte(`<Error><Code>NoSuchBucket</Code><Message>bucket gone</Message></Error>`)
	err := errorWithBody(body, false)
	assert.Equal(t, "NoSuchBucket", err.Code)
	assert.Equal(t, "bucket gone", err.Message)
}

func TestErrorWithBodyDefaultsNotFound(t *testing.T) {
	err := errorWithBody(nil, true)
	assert.Equal(t, "NoSuchKey", err.Code)
	assert.Equal(t, "The specified key does not exist.", err.Message)
}

func TestErrorWithBodyDefaultsUnknown(t *testing.T) {
	err := errorWithBody([]byte("not xml at all"), false)
	assert.Equal(t, "UnknownError", err.Code)
}

func TestFailIfContainsErrorPassesCleanBody(t *testing.T) {
	assert.Nil(t, failIfContainsError(200, []byte(`<CompleteMultipartUploadResult/>`)))
	assert.Nil(t, failIfContainsError(206, nil))
}

func TestFailIfContainsErrorCatchesEmbeddedError(t *testing.T) {
	err := failIfContainsError(200, []byte(`<Error><Code>InternalError</Code><Message>boom</Message></Error>`))
	assert.NotNil(t, err)
	assert.Equal(t, "InternalError", err.Code)
}

func TestFailIfContainsErrorRejectsUnexpectedStatus(t *testing.T) {
	err := failIfContainsError(503, []byte("Service Unavailable"))
	assert.NotNil(t, err)
	assert.Equal(t, "UnexpectedStatus", err.Code)
}
