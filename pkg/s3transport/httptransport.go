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

package s3transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPTransport is the reference Executor, built on net/http. Every
// in-flight request runs on its own goroutine so Do never blocks its
// caller, matching spec §5's "HTTP transport runs on its own worker
// thread(s); completion is handed back via a concurrent task queue" model.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport builds an HTTPTransport with sane defaults.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{Timeout: 0},
	}
}

func (t *HTTPTransport) clientFor(opts RequestOptions) *http.Client {
	if opts.ProxyURL == "" && opts.RejectUnauthorized {
		return t.Client
	}

	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if proxyURL, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	if !opts.RejectUnauthorized {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // host opted out of verification explicitly
	}
	return &http.Client{Timeout: t.clientTimeout(), Transport: transport}
}

func (t *HTTPTransport) clientTimeout() time.Duration {
	if t.Client != nil {
		return t.Client.Timeout
	}
	return 0
}

func (t *HTTPTransport) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, opts RequestOptions, done Completion) {
	go func() {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
		if err != nil {
			done(Response{Fail: err, HasMore: false})
			return
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := t.clientFor(opts).Do(req)
		if err != nil {
			done(Response{Fail: err, HasMore: false})
			return
		}
		defer resp.Body.Close()

		if opts.Streaming {
			t.streamBody(resp, done)
			return
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			done(Response{Fail: err, HasMore: false})
			return
		}
		done(Response{Status: resp.StatusCode, Headers: flattenHeader(resp.Header), Body: data, HasMore: false})
	}()
}

const streamChunkSize = 64 * 1024

func (t *HTTPTransport) streamBody(resp *http.Response, done Completion) {
	hdr := flattenHeader(resp.Header)
	buf := make([]byte, streamChunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			done(Response{Status: resp.StatusCode, Headers: hdr, Body: chunk, HasMore: true})
		}
		if err == io.EOF {
			done(Response{Status: resp.StatusCode, Headers: hdr, HasMore: false})
			return
		}
		if err != nil {
			done(Response{Status: resp.StatusCode, Headers: hdr, Fail: err, HasMore: false})
			return
		}
	}
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
