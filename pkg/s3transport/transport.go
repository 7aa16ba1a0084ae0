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

// Package s3transport is the seam spec §6 calls the HTTP transport contract:
// the core treats the network as an async request executor with streaming
// body delivery, never opening a socket itself. A reference net/http-based
// implementation is provided so the module is directly usable, but
// pkg/s3client and pkg/s3multipart only ever depend on the Executor
// interface.
package s3transport

import "context"

// RequestOptions carries the collaborator-level knobs spec §6 lists:
// proxying, verbose logging and TLS verification toggles, and whether the
// caller wants the completion callback invoked more than once (streaming).
type RequestOptions struct {
	ProxyURL           string
	Verbose            bool
	RejectUnauthorized bool
	Streaming          bool
}

// Response is what a transport hands back on each completion. Streaming
// transports may invoke the callback multiple times with HasMore=true;
// Fail carries a transport-level error (connection/TLS failure) distinct
// from a non-2xx HTTP status, which is reported via Status instead.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
	Fail    error
	HasMore bool
}

// Completion is invoked once per Response; for streaming responses it may
// be invoked multiple times, the last with HasMore=false.
type Completion func(Response)

// Executor is spec §6's HTTP transport contract. The core suspends the
// logical operation at every call and resumes only when Completion fires
// (spec §5's "suspension point" rule).
type Executor interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte, opts RequestOptions, done Completion)
}
