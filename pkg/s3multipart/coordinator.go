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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimbusfs/s3core/common"
	"github.com/nimbusfs/s3core/internal/s3log"
	"github.com/nimbusfs/s3core/internal/s3stats"
	"github.com/nimbusfs/s3core/pkg/s3client"
	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
)

// retryBackoff is the small fixed delay between retry attempts for part
// PUTs, the commit POST and the abort DELETE. Matches the source material's
// retry loop, which uses a short fixed backoff rather than full exponential
// backoff - the per-request retry budget is small enough that backoff
// sophistication isn't worth the complexity.
const retryBackoff = 200 * time.Millisecond

// State is the MultipartUpload lifecycle from the data model:
// wait_stream_check → not_started → {singlefile_started | multipart_started
// → multipart_completed} → finished.
type State int

const (
	StateWaitStreamCheck State = iota
	StateNotStarted
	StateSingleFileStarted
	StateMultipartStarted
	StateMultipartCompleted
	StateFinished
)

// Outcome is the closed set the upload's terminal callback reports.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

// Result is the single terminal notification every MultipartUpload
// delivers exactly once, per the "once finished, no further callbacks"
// invariant.
type Result struct {
	Outcome Outcome
	ETag    string
	Err     *s3client.S3Error
}

// ResultCallback receives the upload's one terminal Result.
type ResultCallback func(Result)

// MultipartUpload is the coordinator: it owns the lifecycle of one logical
// object upload; a producer feeds it bytes via SendRequestData and it drives
// initiate/part/commit/abort requests through a Client.
type MultipartUpload struct {
	client      *s3client.Client
	credentials s3creds.Credentials
	path        string
	proxyURL    string
	contentType string
	acl         s3creds.ACL
	options     Options
	onResult    ResultCallback
	progress    *s3stats.Throughput
	sem         *semaphore.Weighted
	pathLock    *sync.Mutex

	mu                 sync.Mutex
	state              State
	uploadID           string
	currentPartNumber  int
	buffered           []byte
	offset             int
	// availableMask tracks occupied slots, inverted from the data model's
	// "set bit means free" convention: a set bit here is an in-flight part
	// (FindFirstSet finds and sets the first zero/free bit; completion
	// requires PopCount()==0, i.e. every slot cleared back to free).
	availableMask      common.BitMap64
	inFlight           map[uint64]*UploadPart
	multipartEtags     []partResult
	ended              bool
	commitRetryLeft    int
	abortRetryLeft     int
	reported           bool
	firstFatal         *s3client.S3Error
}

// uploadLocks keys a lock per destination path so that two MultipartUpload
// instances aimed at the same object key serialize rather than racing their
// initiate/part/commit/abort sequences against each other.
var uploadLocks common.KeyedMutex

// New builds a MultipartUpload bound to a signed-request client. acl may be
// s3creds.ACLNone to omit the header entirely. New blocks until any other
// in-flight upload to the same path has finished.
func New(client *s3client.Client, creds s3creds.Credentials, path, contentType string, acl s3creds.ACL, proxyURL string, opts Options, progress *s3stats.Throughput, onResult ResultCallback) (*MultipartUpload, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	pathLock := uploadLocks.GetLock(path)
	pathLock.Lock()
	return &MultipartUpload{
		client:          client,
		credentials:     creds,
		path:            path,
		proxyURL:        proxyURL,
		contentType:     contentType,
		acl:             acl,
		options:         opts,
		onResult:        onResult,
		progress:        progress,
		sem:             semaphore.NewWeighted(int64(opts.QueueSize)),
		pathLock:        pathLock,
		state:           StateWaitStreamCheck,
		currentPartNumber: 0,
		inFlight:        make(map[uint64]*UploadPart),
		commitRetryLeft: opts.Retry,
		abortRetryLeft:  opts.Retry,
	}, nil
}

// SendRequestData feeds the coordinator the next chunk from the producer,
// eof marking the end of the logical source. It returns true if the
// coordinator is applying backpressure - the producer should pause sending
// until a part completes and frees a slot.
func (u *MultipartUpload) SendRequestData(ctx context.Context, data []byte, eof bool) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateFinished {
		return false
	}

	switch u.state {
	case StateWaitStreamCheck:
		if eof && len(data) == 0 {
			u.finishLocked(Result{Outcome: OutcomeFailure, Err: &s3client.S3Error{Code: "EmptySource", Message: "stream ended before any data arrived"}})
			return false
		}
		u.state = StateNotStarted
		fallthrough
	case StateNotStarted:
		u.buffered = append(u.buffered, data...)
		if eof {
			u.ended = true
		}
		if u.ended && int64(len(u.buffered)) < u.options.PartSize {
			u.startSingleFileLocked(ctx)
			return false
		}
		return u.drainLocked(ctx)
	default:
		u.buffered = append(u.buffered, data...)
		if eof {
			u.ended = true
		}
		return u.drainLocked(ctx)
	}
}

// startSingleFileLocked takes spec §4.7's single-file path: the whole
// buffer fits under one PUT, so no upload id is ever created.
func (u *MultipartUpload) startSingleFileLocked(ctx context.Context) {
	u.state = StateSingleFileStarted
	body := u.buffered
	u.buffered = nil

	opts := s3client.RequestOptions{Path: u.path, ContentType: u.contentType, Body: body, ProxyURL: u.proxyURL, ACL: u.acl}
	u.client.Upload(ctx, opts, func(res s3client.Result) {
		u.mu.Lock()
		defer u.mu.Unlock()
		if res.Outcome == s3client.OutcomeSuccess {
			u.finishLocked(Result{Outcome: OutcomeSuccess, ETag: res.ETag})
			return
		}
		u.finishLocked(Result{Outcome: OutcomeFailure, Err: res.Err})
	})
}

// drainLocked slices as many partSize-sized chunks out of the buffered
// reserve as there are free slots for, per spec §4.7's backpressure rule.
// Returns true if a slice was ready to send but no slot was available.
func (u *MultipartUpload) drainLocked(ctx context.Context) bool {
	backpressure := false
	for {
		remaining := len(u.buffered) - u.offset
		if remaining <= 0 {
			break
		}
		full := int64(remaining) >= u.options.PartSize
		if !full && !u.ended {
			break
		}

		size := u.options.PartSize
		if !full {
			size = int64(remaining)
		}
		slice := u.buffered[u.offset : u.offset+int(size)]

		if !u.enqueuePartLocked(ctx, slice) {
			backpressure = true
			break
		}
		u.offset += int(size)
	}

	if u.offset > 0 && u.offset == len(u.buffered) {
		u.buffered = nil
		u.offset = 0
	}

	u.maybeCompleteLocked(ctx)
	return backpressure
}

// enqueuePartLocked finds a free slot via availableMask.FindFirstSet and
// dispatches the part PUT. Returns false ("no slot") when every slot in
// [0, queueSize) is occupied, in which case the caller must leave the data
// in buffered and stop.
func (u *MultipartUpload) enqueuePartLocked(ctx context.Context, data []byte) bool {
	if u.state == StateNotStarted {
		u.state = StateMultipartStarted
		u.initiateLocked(ctx)
	}
	if u.state != StateMultipartCompleted {
		// initiation still in flight (uploadId not known yet) or already
		// failed; drainEnqueuedPartsLocked re-enters once it resolves.
		return false
	}

	slot, ok := u.availableMask.FindFirstSet(uint64(u.options.QueueSize))
	if !ok {
		return false
	}

	u.currentPartNumber++
	part := &UploadPart{
		Data:           data,
		OwnsData:       false,
		PartNumber:     u.currentPartNumber,
		RetryRemaining: u.options.Retry,
		SlotIndex:      slot,
		State:          PartStarted,
	}
	u.inFlight[slot] = part
	u.dispatchPartLocked(ctx, part)
	return true
}

func (u *MultipartUpload) dispatchPartLocked(ctx context.Context, part *UploadPart) {
	if !u.sem.TryAcquire(1) {
		// Every slot counted by availableMask already implies a semaphore
		// unit is free; TryAcquire failing here means the two bookkeeping
		// structures disagree, which is a coordinator bug, not backpressure.
		// Fail safe rather than oversubscribe the concurrency gate.
		s3log.Crit("MultipartUpload::dispatchPartLocked : semaphore exhausted with a free bitmap slot for part %d", part.PartNumber)
		u.failLocked(ctx, &s3client.S3Error{Code: "InternalError", Message: "concurrency bookkeeping inconsistency"})
		return
	}

	opts := s3client.RequestOptions{
		Path:         u.path,
		SearchParams: fmt.Sprintf("partNumber=%d&uploadId=%s&x-id=UploadPart", part.PartNumber, u.uploadID),
		Body:         part.Data,
		ProxyURL:     u.proxyURL,
	}
	u.client.Part(ctx, opts, func(res s3client.Result) {
		u.onPartComplete(ctx, part, res)
	})
}

func (u *MultipartUpload) onPartComplete(ctx context.Context, part *UploadPart, res s3client.Result) {
	u.sem.Release(1)

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateFinished {
		return
	}

	if res.Outcome == s3client.OutcomeSuccess {
		part.State = PartCompleted
		part.ETag = res.PartETag
		u.multipartEtags = append(u.multipartEtags, partResult{PartNumber: part.PartNumber, ETag: part.ETag})
		if u.progress != nil {
			u.progress.Observe(int64(len(part.Data)))
		}
		u.availableMask.Clear(part.SlotIndex)
		delete(u.inFlight, part.SlotIndex)
		u.drainLocked(ctx)
		return
	}

	if part.RetryRemaining > 0 {
		part.RetryRemaining--
		s3log.Warn("MultipartUpload::onPartComplete : retrying part %d (%d attempts left) : %v", part.PartNumber, part.RetryRemaining, res.Err)
		time.AfterFunc(retryBackoff, func() {
			u.mu.Lock()
			defer u.mu.Unlock()
			if u.state == StateFinished {
				return
			}
			u.dispatchPartLocked(ctx, part)
		})
		return
	}

	u.availableMask.Clear(part.SlotIndex)
	delete(u.inFlight, part.SlotIndex)
	u.failLocked(ctx, res.Err)
}

// initiateLocked issues POST <path>?uploads= and transitions to
// multipart_completed (ready to accept part dispatch) once an upload id is
// parsed out of the response body.
func (u *MultipartUpload) initiateLocked(ctx context.Context) {
	opts := s3client.RequestOptions{Method: s3sign.MethodPOST, Path: u.path, ContentType: u.contentType, SearchParams: "uploads=", ProxyURL: u.proxyURL, ACL: u.acl}
	u.client.Raw(ctx, opts, func(resp s3transport.Response, rawErr *s3client.S3Error) {
		u.mu.Lock()
		defer u.mu.Unlock()

		if u.state == StateFinished {
			return
		}
		if rawErr != nil {
			u.failLocked(ctx, rawErr)
			return
		}
		if s3err := s3client.ClassifyCommitError(resp.Status, resp.Body); s3err != nil {
			u.failLocked(ctx, s3err)
			return
		}
		id, ok := parseUploadID(resp.Body)
		if !ok {
			u.failLocked(ctx, &s3client.S3Error{Code: "UnknownError", Message: "Failed to initiate multipart upload"})
			return
		}
		u.uploadID = id
		u.state = StateMultipartCompleted
		u.drainEnqueuedPartsLocked(ctx)
	})
}

// drainEnqueuedPartsLocked is drainLocked's re-entry point once the upload
// id is known: anything buffered while initiation was in flight gets
// dispatched now.
func (u *MultipartUpload) drainEnqueuedPartsLocked(ctx context.Context) {
	u.drainLocked(ctx)
}

// maybeCompleteLocked implements spec §4.7's completion condition: ended,
// every slot free, and state is multipart_completed.
func (u *MultipartUpload) maybeCompleteLocked(ctx context.Context) {
	if u.state != StateMultipartCompleted {
		return
	}
	if !u.ended || u.offset != 0 || len(u.buffered) != 0 {
		return
	}
	if u.availableMask.PopCount() != 0 {
		return
	}
	u.commitLocked(ctx)
}

func (u *MultipartUpload) commitLocked(ctx context.Context) {
	body := buildCompleteBody(u.multipartEtags)
	opts := s3client.RequestOptions{Method: s3sign.MethodPOST, Path: u.path, SearchParams: "uploadId=" + u.uploadID, Body: body, ProxyURL: u.proxyURL}

	u.client.Raw(ctx, opts, func(resp s3transport.Response, rawErr *s3client.S3Error) {
		u.mu.Lock()
		defer u.mu.Unlock()

		if u.state == StateFinished {
			return
		}

		var s3err *s3client.S3Error
		if rawErr != nil {
			s3err = rawErr
		} else {
			s3err = s3client.ClassifyCommitError(resp.Status, resp.Body)
		}

		if s3err == nil {
			etag, _ := parseCompleteETag(resp.Body)
			u.finishLocked(Result{Outcome: OutcomeSuccess, ETag: etag})
			return
		}

		if u.commitRetryLeft > 0 {
			u.commitRetryLeft--
			s3log.Warn("MultipartUpload::commitLocked : retrying commit (%d attempts left) : %v", u.commitRetryLeft, s3err)
			time.AfterFunc(retryBackoff, func() {
				u.mu.Lock()
				defer u.mu.Unlock()
				if u.state == StateFinished {
					return
				}
				u.commitLocked(ctx)
			})
			return
		}
		u.failLocked(ctx, s3err)
	})
}

// failLocked begins rollback: every pending part is canceled, the user
// callback fires with failure, and an abort DELETE is issued best-effort.
func (u *MultipartUpload) failLocked(ctx context.Context, cause *s3client.S3Error) {
	if u.firstFatal == nil {
		u.firstFatal = cause
	}

	for slot, part := range u.inFlight {
		part.State = PartCanceled
		part.Data = nil
		u.availableMask.Clear(slot)
		delete(u.inFlight, slot)
	}

	hadUploadID := u.uploadID != ""
	u.finishLocked(Result{Outcome: OutcomeFailure, Err: u.firstFatal})

	if hadUploadID {
		u.abortLocked(ctx)
	}
}

// abortLocked issues DELETE <path>?uploadId=<id> with its own retry budget,
// independent of any per-part counters. Errors here are logged (combined
// with the original failure cause via multierr) but never re-surfaced to
// the user callback, which has already fired exactly once.
func (u *MultipartUpload) abortLocked(ctx context.Context) {
	if u.uploadID == "" {
		return
	}
	opts := s3client.RequestOptions{Path: u.path, SearchParams: "uploadId=" + u.uploadID, ProxyURL: u.proxyURL}
	u.client.Delete(ctx, opts, func(res s3client.Result) {
		if res.Outcome == s3client.OutcomeSuccess || res.Outcome == s3client.OutcomeNotFound {
			return
		}
		u.mu.Lock()
		retryLeft := u.abortRetryLeft
		if retryLeft > 0 {
			u.abortRetryLeft--
		}
		u.mu.Unlock()

		if retryLeft > 0 {
			time.AfterFunc(retryBackoff, func() {
				u.abortLocked(ctx)
			})
			return
		}
		combined := multierr.Append(error(u.firstFatal), error(res.Err))
		s3log.Err("MultipartUpload::abortLocked : failed to abort upload %s after rollback : %v", u.uploadID, combined)
	})
}

// finishLocked delivers the terminal callback exactly once and transitions
// to finished; any later completion (a straggling part, a late abort
// response) is absorbed silently per the terminal invariant.
func (u *MultipartUpload) finishLocked(res Result) {
	if u.reported {
		return
	}
	u.reported = true
	u.state = StateFinished
	u.onResult(res)
	u.pathLock.Unlock()
}
