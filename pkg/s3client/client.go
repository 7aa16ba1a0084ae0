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

// Package s3client wraps pkg/s3sign and pkg/s3transport into the simple
// request executor and streaming download task from spec §4.5-§4.6: sign,
// dispatch, classify the response into one of the typed Result variants.
package s3client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nimbusfs/s3core/internal/s3log"
	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"
)

// Range is an inclusive byte range; End < 0 means open-ended
// ("bytes=<Start>-", per spec §6's Range header wire format).
type Range struct {
	Start int64
	End   int64 // -1 for open-ended
}

func (r Range) header() string {
	if r.End < 0 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// RequestOptions is spec §4.5's simple-request-executor input.
type RequestOptions struct {
	Path               string
	Method             s3sign.Method
	SearchParams       string
	ContentType        string
	ContentDisposition string
	Body               []byte
	ProxyURL           string
	Range              *Range
	ACL                s3creds.ACL
}

// Client is the simple request executor: it signs a request, builds
// headers, dispatches through the configured Executor, and classifies the
// response into a typed Result.
type Client struct {
	Signer   *s3sign.Signer
	Executor s3transport.Executor
}

// NewClient builds a Client over a signer and transport.
func NewClient(signer *s3sign.Signer, executor s3transport.Executor) *Client {
	return &Client{Signer: signer, Executor: executor}
}

func (c *Client) sign(opts RequestOptions, contentHash string) (*s3sign.SignResult, error) {
	return c.Signer.Sign(s3sign.SignOptions{
		Path:               opts.Path,
		Method:             opts.Method,
		ContentHash:        contentHash,
		SearchParams:       opts.SearchParams,
		ContentDisposition: opts.ContentDisposition,
		ACL:                opts.ACL,
	})
}

func headerMap(signed *s3sign.SignResult, opts RequestOptions) map[string]string {
	headers := make(map[string]string, len(signed.Headers)+2)
	for _, h := range signed.Headers {
		headers[h.Name] = h.Value
	}
	if opts.Range != nil {
		headers["Range"] = opts.Range.header()
	}
	if opts.ContentType != "" {
		headers["Content-Type"] = opts.ContentType
	}
	return headers
}

func (c *Client) dispatch(ctx context.Context, op Operation, opts RequestOptions, streaming bool, done Callback) {
	signed, err := c.sign(opts, "")
	if err != nil {
		s3log.Err("Client::dispatch : signing failed for %s : %v", opts.Path, err)
		done(Result{Outcome: OutcomeFailure, Op: op, Err: classifySigningError(err)})
		return
	}

	headers := headerMap(signed, opts)
	reqOpts := s3transport.RequestOptions{ProxyURL: opts.ProxyURL, Streaming: streaming, RejectUnauthorized: true}

	c.Executor.Do(ctx, string(opts.Method), signed.URL, headers, opts.Body, reqOpts, func(resp s3transport.Response) {
		if resp.Fail != nil {
			s3log.Err("Client::dispatch : transport failure for %s : %v", opts.Path, resp.Fail)
			done(Result{Outcome: OutcomeFailure, Op: op, Err: &S3Error{Code: "TransportError", Message: resp.Fail.Error()}})
			return
		}
		handleResponse(op, resp, done)
	})
}

func classifySigningError(err error) *S3Error {
	if se, ok := err.(*s3sign.SigningError); ok {
		return &S3Error{Code: string(se.Code), Message: se.Message}
	}
	return &S3Error{Code: "UnknownError", Message: err.Error()}
}

func handleResponse(op Operation, resp s3transport.Response, done Callback) {
	switch op {
	case OpStat:
		handleStat(resp, done)
	case OpDownload:
		handleDownload(resp, done)
	case OpUpload:
		handleUpload(resp, done)
	case OpDelete:
		handleDelete(resp, done)
	case OpCommit:
		handleCommitOrPart(OpCommit, resp, done)
	case OpPart:
		handleCommitOrPart(OpPart, resp, done)
	}
}

func handleStat(resp s3transport.Response, done Callback) {
	switch resp.Status {
	case 200:
		length, _ := strconv.ParseInt(resp.Headers["Content-Length"], 10, 64)
		done(Result{Outcome: OutcomeSuccess, Op: OpStat, ETag: resp.Headers["Etag"], ContentLength: length})
	case 404:
		done(Result{Outcome: OutcomeNotFound, Op: OpStat, Err: errorWithBody(resp.Body, true)})
	default:
		done(Result{Outcome: OutcomeFailure, Op: OpStat, Err: errorWithBody(resp.Body, false)})
	}
}

func handleDownload(resp s3transport.Response, done Callback) {
	switch resp.Status {
	case 200, 204, 206:
		done(Result{Outcome: OutcomeSuccess, Op: OpDownload, Body: resp.Body})
	case 404:
		done(Result{Outcome: OutcomeNotFound, Op: OpDownload, Err: errorWithBody(resp.Body, true)})
	default:
		done(Result{Outcome: OutcomeFailure, Op: OpDownload, Err: errorWithBody(resp.Body, false)})
	}
}

func handleUpload(resp s3transport.Response, done Callback) {
	if resp.Status == 200 {
		done(Result{Outcome: OutcomeSuccess, Op: OpUpload, ETag: resp.Headers["Etag"]})
		return
	}
	done(Result{Outcome: OutcomeFailure, Op: OpUpload, Err: errorWithBody(resp.Body, false)})
}

func handleDelete(resp s3transport.Response, done Callback) {
	switch resp.Status {
	case 200, 204:
		done(Result{Outcome: OutcomeSuccess, Op: OpDelete})
	case 404:
		done(Result{Outcome: OutcomeNotFound, Op: OpDelete, Err: errorWithBody(resp.Body, true)})
	default:
		done(Result{Outcome: OutcomeFailure, Op: OpDelete, Err: errorWithBody(resp.Body, false)})
	}
}

// handleCommitOrPart implements spec §4.5's commit/part row: 200 is only a
// success if the body has no <Error> envelope.
func handleCommitOrPart(op Operation, resp s3transport.Response, done Callback) {
	if s3err := failIfContainsError(resp.Status, resp.Body); s3err != nil {
		done(Result{Outcome: OutcomeFailure, Op: op, Err: s3err})
		return
	}
	result := Result{Outcome: OutcomeSuccess, Op: op}
	if op == OpPart {
		result.PartETag = resp.Headers["Etag"]
	}
	done(result)
}

// Stat issues a HEAD request and reports size/etag on success.
func (c *Client) Stat(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodHEAD
	c.dispatch(ctx, OpStat, opts, false, done)
}

// Download issues a GET request, optionally range-bound.
func (c *Client) Download(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodGET
	c.dispatch(ctx, OpDownload, opts, false, done)
}

// Upload issues a single PUT carrying the whole body.
func (c *Client) Upload(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodPUT
	c.dispatch(ctx, OpUpload, opts, false, done)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodDELETE
	c.dispatch(ctx, OpDelete, opts, false, done)
}

// Commit issues the multipart-complete POST.
func (c *Client) Commit(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodPOST
	c.dispatch(ctx, OpCommit, opts, false, done)
}

// Part issues one multipart-part PUT.
func (c *Client) Part(ctx context.Context, opts RequestOptions, done Callback) {
	opts.Method = s3sign.MethodPUT
	c.dispatch(ctx, OpPart, opts, false, done)
}

// RawCallback hands back the unclassified transport response (status,
// headers, body) alongside a non-nil err only for signing/transport-level
// failures that never reached the server.
type RawCallback func(resp s3transport.Response, err *S3Error)

// Raw signs and dispatches a request without routing the response through
// one of the six typed Result variants. The multipart coordinator uses this
// directly for the initiate/commit requests, which need to inspect
// the XML body themselves (UploadId extraction, the ClassifyCommitError
// check) rather than fitting one of Client's fixed operation shapes.
func (c *Client) Raw(ctx context.Context, opts RequestOptions, done RawCallback) {
	signed, err := c.sign(opts, "")
	if err != nil {
		s3log.Err("Client::Raw : signing failed for %s : %v", opts.Path, err)
		done(s3transport.Response{}, classifySigningError(err))
		return
	}

	headers := headerMap(signed, opts)
	reqOpts := s3transport.RequestOptions{ProxyURL: opts.ProxyURL, RejectUnauthorized: true}

	c.Executor.Do(ctx, string(opts.Method), signed.URL, headers, opts.Body, reqOpts, func(resp s3transport.Response) {
		if resp.Fail != nil {
			s3log.Err("Client::Raw : transport failure for %s : %v", opts.Path, resp.Fail)
			done(resp, &S3Error{Code: "TransportError", Message: resp.Fail.Error()})
			return
		}
		done(resp, nil)
	})
}
