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

// Outcome is the closed set a typed result variant can be in, per spec §4.5
// / §7: {success, not_found, failure} - a subset per operation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeFailure
)

// Result is the context-erased callback payload every simple-request
// operation resolves to. Only the fields relevant to Outcome/Op are
// populated; this mirrors the source system's tagged-union result rather
// than six separate Go types, since every operation shares the same
// {success, not_found, failure} shape and callback plumbing.
type Result struct {
	Outcome Outcome
	Op      Operation

	// stat (ETag is also set by a successful upload)
	ETag          string
	ContentLength int64

	// download: body ownership transfers to the caller on success
	Body []byte

	// failure / not_found
	Err *S3Error

	// part
	PartETag string
}

// Operation names which of the six simple-request operations produced a
// Result, used only to pick which fields are meaningful.
type Operation int

const (
	OpStat Operation = iota
	OpDownload
	OpUpload
	OpDelete
	OpCommit
	OpPart
)

// Callback receives exactly one Result per request.
type Callback func(Result)
