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
	"context"
	"sync"

	"github.com/nimbusfs/s3core/internal/s3log"
	"github.com/nimbusfs/s3core/internal/s3stats"
	"github.com/nimbusfs/s3core/pkg/s3transport"
	"go.uber.org/atomic"
)

// Chunk is one partial-delivery wakeup from a StreamingDownload: the bytes
// accumulated since the previous wakeup, whether more are still coming, and
// the terminal error (only set once HasMore is false and the download
// failed).
type Chunk struct {
	Data    []byte
	HasMore bool
	Err     *S3Error
}

// ChunkCallback receives every StreamingDownload wakeup; invoked on
// whatever goroutine the transport delivers completions from.
type ChunkCallback func(Chunk)

// StreamingDownload is spec §4.6's partial-delivery download task: a GET
// dispatched with transport streaming enabled, where the HTTP transport's
// receive buffer and the consumer-facing report buffer are kept separate so
// a slow consumer never blocks the socket reader mid-copy.
type StreamingDownload struct {
	client   *Client
	onChunk  ChunkCallback
	progress *s3stats.Throughput

	mu     sync.Mutex
	buffer []byte

	hasScheduledCallback atomic.Bool // a drain is already pending
	status               int
	headers              map[string]string
}

// NewStreamingDownload wires a download task to a client and a consumer
// callback. progress may be nil if the caller has no use for throughput
// samples.
func NewStreamingDownload(client *Client, progress *s3stats.Throughput, onChunk ChunkCallback) *StreamingDownload {
	return &StreamingDownload{client: client, onChunk: onChunk, progress: progress}
}

// Start issues the range GET. opts.Method is forced to GET regardless of
// the caller's setting.
func (d *StreamingDownload) Start(ctx context.Context, opts RequestOptions) {
	opts.Method = "GET"
	signed, err := d.client.sign(opts, "")
	if err != nil {
		s3log.Err("StreamingDownload::Start : signing failed for %s : %v", opts.Path, err)
		d.onChunk(Chunk{HasMore: false, Err: classifySigningError(err)})
		return
	}

	headers := headerMap(signed, opts)
	reqOpts := s3transport.RequestOptions{ProxyURL: opts.ProxyURL, Streaming: true, RejectUnauthorized: true}

	d.client.Executor.Do(ctx, "GET", signed.URL, headers, nil, reqOpts, d.onTransportResponse)
}

// onTransportResponse is the transport Completion; it may fire many times
// for one logical download, the last with HasMore=false.
func (d *StreamingDownload) onTransportResponse(resp s3transport.Response) {
	if resp.Fail != nil {
		d.finishWithError(&S3Error{Code: "TransportError", Message: resp.Fail.Error()})
		return
	}

	d.mu.Lock()
	if resp.Status != 0 {
		d.status = resp.Status
		d.headers = resp.Headers
	}
	d.buffer = append(d.buffer, resp.Body...)
	d.mu.Unlock()

	if d.progress != nil && len(resp.Body) > 0 {
		d.progress.Observe(int64(len(resp.Body)))
	}

	if !resp.HasMore {
		d.finishStream()
		return
	}

	// A non-2xx status means the bytes seen so far are an in-progress XML
	// error body, not payload - hold them until the terminal chunk so
	// finishStream can parse the complete envelope.
	if !isSuccessStatus(d.currentStatus()) {
		return
	}

	d.scheduleDrain()
}

func (d *StreamingDownload) currentStatus() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func isSuccessStatus(status int) bool {
	switch status {
	case 200, 204, 206:
		return true
	default:
		return false
	}
}

// scheduleDrain coalesces concurrent chunk arrivals into a single consumer
// wakeup: if a drain is already pending, this arrival just adds to the
// buffer and returns.
func (d *StreamingDownload) scheduleDrain() {
	if !d.hasScheduledCallback.CompareAndSwap(false, true) {
		return
	}
	defer d.hasScheduledCallback.Store(false)

	for {
		d.mu.Lock()
		data := d.buffer
		d.buffer = nil
		d.mu.Unlock()

		if len(data) == 0 {
			return
		}
		d.onChunk(Chunk{Data: data, HasMore: true})
	}
}

// finishStream is reached once the transport reports !HasMore. A non-2xx
// status means the buffered bytes are actually an XML error body, which can
// only be parsed once fully received - hence waiting for !has_more before
// reporting failure.
func (d *StreamingDownload) finishStream() {
	d.mu.Lock()
	status := d.status
	data := d.buffer
	d.buffer = nil
	d.mu.Unlock()

	switch status {
	case 200, 204, 206:
		d.onChunk(Chunk{Data: data, HasMore: false})
	case 404:
		d.onChunk(Chunk{HasMore: false, Err: errorWithBody(data, true)})
	default:
		d.onChunk(Chunk{HasMore: false, Err: errorWithBody(data, false)})
	}
}

func (d *StreamingDownload) finishWithError(err *S3Error) {
	d.mu.Lock()
	d.buffer = nil
	d.mu.Unlock()
	d.onChunk(Chunk{HasMore: false, Err: err})
}
