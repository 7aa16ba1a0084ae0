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

import "fmt"

// Code is the closed set of signing-error codes from spec §4.8/§7. Signing
// errors are synchronous and fail before any HTTP request is made.
type Code string

const (
	ErrMissingCredentials  Code = "ERR_S3_MISSING_CREDENTIALS"
	ErrInvalidMethod       Code = "ERR_S3_INVALID_METHOD"
	ErrInvalidPath         Code = "ERR_S3_INVALID_PATH"
	ErrInvalidEndpoint     Code = "ERR_S3_INVALID_ENDPOINT"
	ErrInvalidSessionToken Code = "ERR_S3_INVALID_SESSION_TOKEN"
	ErrInvalidSignature    Code = "ERR_S3_INVALID_SIGNATURE"
)

// SigningError is returned synchronously by Sign/SignQuery. It never wraps
// a transport or protocol error - those belong to pkg/s3client.
type SigningError struct {
	Code    Code
	Message string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidPathError is returned by ResolvePath; it always maps to
// ErrInvalidPath once surfaced through Sign/SignQuery.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func missingCredentials(msg string) error {
	return &SigningError{Code: ErrMissingCredentials, Message: msg}
}

func invalidMethod(method string) error {
	return &SigningError{Code: ErrInvalidMethod, Message: fmt.Sprintf("unsupported method %q", method)}
}

func invalidPath(err error) error {
	return &SigningError{Code: ErrInvalidPath, Message: err.Error()}
}

func invalidEndpoint(msg string) error {
	return &SigningError{Code: ErrInvalidEndpoint, Message: msg}
}
