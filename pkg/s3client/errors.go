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
	"encoding/xml"
	"fmt"
)

// S3Error is the {code, message} pair spec §4.8/§7 classifies every
// protocol/semantic error into.
type S3Error struct {
	Code    string
	Message string
}

func (e *S3Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// s3ErrorXML mirrors S3's <Error><Code/><Message/></Error> envelope. Other
// fields S3 sometimes includes (RequestId, Resource, HostId) are not
// modeled since nothing here consumes them.
type s3ErrorXML struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// errorWithBody implements spec §4.8 mode 1: strict parse. isNotFound
// selects the NoSuchKey default when the body carries no <Error> envelope
// at all (e.g. an empty 404 body).
func errorWithBody(body []byte, isNotFound bool) *S3Error {
	var parsed s3ErrorXML
	if err := xml.Unmarshal(body, &parsed); err == nil && (parsed.Code != "" || parsed.Message != "") {
		code := parsed.Code
		if code == "" {
			code = "UnknownError"
		}
		msg := parsed.Message
		if msg == "" {
			msg = "an unexpected error has occurred"
		}
		return &S3Error{Code: code, Message: msg}
	}

	if isNotFound {
		return &S3Error{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &S3Error{Code: "UnknownError", Message: "an unexpected error has occurred"}
}

// ClassifyError exposes errorWithBody to callers outside this package (the
// multipart coordinator, which inspects raw bodies via Client.Raw instead of
// going through one of the six typed Result variants).
func ClassifyError(body []byte, isNotFound bool) *S3Error {
	return errorWithBody(body, isNotFound)
}

// ClassifyCommitError exposes failIfContainsError to callers outside this
// package.
func ClassifyCommitError(status int, body []byte) *S3Error {
	return failIfContainsError(status, body)
}

// failIfContainsError implements spec §4.8 mode 2 for commit and part
// responses: a body carrying an <Error> envelope is a failure with the
// parsed code and message whatever the status, so a 2xx response with an
// embedded error still fails; without an envelope, 200/206 pass and any
// other status fails with UnexpectedStatus.
func failIfContainsError(status int, body []byte) *S3Error {
	var parsed s3ErrorXML
	if err := xml.Unmarshal(body, &parsed); err == nil && (parsed.Code != "" || parsed.Message != "") {
		code := parsed.Code
		if code == "" {
			code = "UnknownError"
		}
		msg := parsed.Message
		if msg == "" {
			msg = "an unexpected error has occurred"
		}
		return &S3Error{Code: code, Message: msg}
	}
	if status != 200 && status != 206 {
		return &S3Error{Code: "UnexpectedStatus", Message: fmt.Sprintf("unexpected HTTP status %d", status)}
	}
	return nil
}
