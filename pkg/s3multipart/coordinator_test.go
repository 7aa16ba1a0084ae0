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
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nimbusfs/s3core/pkg/s3client"
	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// routedExecutor dispatches every request on its own goroutine, matching
// HTTPTransport's async-completion contract, and routes it to partResponse
// / initiateResponse / commitResponse / abortResponse based on the query
// string - the same shapes the multipart coordinator actually issues.
type routedExecutor struct {
	mu sync.Mutex

	partResponder func(partNumber int, size int) s3transport.Response
	initiated     []string
	committed     []string
	aborted       []string

	inFlightParts  int32
	maxConcurrent  int32
}

var uploadIDRe = regexp.MustCompile(`uploadId=([^&]+)`)
var partNumberRe = regexp.MustCompile(`partNumber=(\d+)`)

func (e *routedExecutor) Do(_ context.Context, method, rawURL string, _ map[string]string, body []byte, _ s3transport.RequestOptions, done s3transport.Completion) {
	go func() {
		u, _ := url.Parse(rawURL)
		query := u.RawQuery

		switch {
		case method == "POST" && strings.Contains(query, "uploads="):
			e.mu.Lock()
			e.initiated = append(e.initiated, rawURL)
			e.mu.Unlock()
			done(s3transport.Response{Status: 200, Body: []byte(`<InitiateMultipartUploadResult><UploadId>test-upload-id</UploadId></InitiateMultipartUploadResult>`)})

		case method == "PUT" && strings.Contains(query, "partNumber="):
			n := atomic.AddInt32(&e.inFlightParts, 1)
			for {
				max := atomic.LoadInt32(&e.maxConcurrent)
				if n <= max || atomic.CompareAndSwapInt32(&e.maxConcurrent, max, n) {
					break
				}
			}
			partNumber, _ := strconv.Atoi(partNumberRe.FindStringSubmatch(query)[1])
			resp := e.partResponder(partNumber, len(body))
			atomic.AddInt32(&e.inFlightParts, -1)
			done(resp)

		case method == "POST" && strings.Contains(query, "uploadId="):
			e.mu.Lock()
			e.committed = append(e.committed, string(body))
			e.mu.Unlock()
			done(s3transport.Response{Status: 200, Body: []byte(`<CompleteMultipartUploadResult/>`)})

		case method == "DELETE":
			e.mu.Lock()
			e.aborted = append(e.aborted, rawURL)
			e.mu.Unlock()
			done(s3transport.Response{Status: 204})

		case method == "PUT":
			// single-file path
			done(s3transport.Response{Status: 200, Headers: map[string]string{"Etag": `"single-file-etag"`}})
		}
	}()
}

type coordinatorTestSuite struct {
	suite.Suite
	assert *assert.Assertions
}

func (s *coordinatorTestSuite) SetupTest() {
	s.assert = assert.New(s.T())
}

func (s *coordinatorTestSuite) newClient(exec s3transport.Executor) *s3client.Client {
	creds := s3creds.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET", Region: "us-east-1", Bucket: "bucket"}
	return s3client.NewClient(s3sign.NewSigner(creds), exec)
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for multipart result")
		return Result{}
	}
}

// Scenario 5: a 17 MiB buffer with partSize=5 MiB, queueSize=3, retry=3
// produces four parts sized 5/5/5/2 MiB, a commit listing parts 1-4 in
// order, and exactly one success callback.
func (s *coordinatorTestSuite) TestMultipartHappyPath() {
	exec := &routedExecutor{partResponder: func(partNumber, size int) s3transport.Response {
		return s3transport.Response{Status: 200, Headers: map[string]string{"Etag": fmt.Sprintf(`"etag%d"`, partNumber)}}
	}}
	client := s.newClient(exec)

	opts := Options{QueueSize: 3, PartSize: 5 * mib, Retry: 3}
	resultCh := make(chan Result, 1)
	callCount := int32(0)
	mpu, err := New(client, s3creds.Credentials{}, "big.bin", "application/octet-stream", s3creds.ACLNone, "", opts, nil, func(r Result) {
		atomic.AddInt32(&callCount, 1)
		resultCh <- r
	})
	s.Require().NoError(err)

	buf := make([]byte, 17*mib)
	mpu.SendRequestData(context.Background(), buf, true)

	res := waitResult(s.T(), resultCh)
	s.assert.Equal(OutcomeSuccess, res.Outcome)
	s.assert.EqualValues(1, atomic.LoadInt32(&callCount))

	s.Require().Len(exec.committed, 1)
	order := regexp.MustCompile(`<PartNumber>(\d)</PartNumber><ETag>"etag(\d)"</ETag>`).FindAllStringSubmatch(exec.committed[0], -1)
	s.Require().Len(order, 4)
	for i, m := range order {
		s.assert.Equal(strconv.Itoa(i+1), m[1])
		s.assert.Equal(strconv.Itoa(i+1), m[2])
	}
}

// Scenario 6: a 500 on part 2 with retry=0 fails the whole upload and
// issues an abort DELETE.
func (s *coordinatorTestSuite) TestMultipartFailureTriggersRollback() {
	exec := &routedExecutor{partResponder: func(partNumber, size int) s3transport.Response {
		if partNumber == 2 {
			return s3transport.Response{Status: 500, Body: []byte(`<Error><Code>InternalError</Code><Message>part failed</Message></Error>`)}
		}
		return s3transport.Response{Status: 200, Headers: map[string]string{"Etag": fmt.Sprintf(`"etag%d"`, partNumber)}}
	}}
	client := s.newClient(exec)

	opts := Options{QueueSize: 3, PartSize: 5 * mib, Retry: 0}
	resultCh := make(chan Result, 1)
	mpu, err := New(client, s3creds.Credentials{}, "big.bin", "application/octet-stream", s3creds.ACLNone, "", opts, nil, func(r Result) { resultCh <- r })
	s.Require().NoError(err)

	buf := make([]byte, 12*mib) // three parts: 5, 5, 2
	mpu.SendRequestData(context.Background(), buf, true)

	res := waitResult(s.T(), resultCh)
	s.assert.Equal(OutcomeFailure, res.Outcome)
	s.assert.Equal("InternalError", res.Err.Code)
	s.assert.Equal("part failed", res.Err.Message)

	s.assert.Eventually(func() bool {
		exec.mu.Lock()
		defer exec.mu.Unlock()
		return len(exec.aborted) == 1
	}, time.Second, 10*time.Millisecond)
}

// Boundary: a buffer exactly partSize large produces one full part, then
// EOF, and still goes through the multipart (not single-file) path.
func (s *coordinatorTestSuite) TestExactPartSizeBufferProducesOnePart() {
	exec := &routedExecutor{partResponder: func(partNumber, size int) s3transport.Response {
		return s3transport.Response{Status: 200, Headers: map[string]string{"Etag": `"etag1"`}}
	}}
	client := s.newClient(exec)

	opts := Options{QueueSize: 2, PartSize: 5 * mib, Retry: 1}
	resultCh := make(chan Result, 1)
	mpu, err := New(client, s3creds.Credentials{}, "exact.bin", "", s3creds.ACLNone, "", opts, nil, func(r Result) { resultCh <- r })
	s.Require().NoError(err)

	mpu.SendRequestData(context.Background(), make([]byte, 5*mib), true)
	res := waitResult(s.T(), resultCh)

	s.assert.Equal(OutcomeSuccess, res.Outcome)
	s.Require().Len(exec.initiated, 1)
}

// Boundary: partSize-1 at EOF takes the single-file path - no initiate
// ever happens.
func (s *coordinatorTestSuite) TestUndersizedBufferTakesSingleFilePath() {
	exec := &routedExecutor{partResponder: func(partNumber, size int) s3transport.Response {
		s.FailNow("no part request expected on the single-file path")
		return s3transport.Response{}
	}}
	client := s.newClient(exec)

	opts := Options{QueueSize: 2, PartSize: 5 * mib, Retry: 1}
	resultCh := make(chan Result, 1)
	mpu, err := New(client, s3creds.Credentials{}, "small.bin", "", s3creds.ACLNone, "", opts, nil, func(r Result) { resultCh <- r })
	s.Require().NoError(err)

	mpu.SendRequestData(context.Background(), make([]byte, 5*mib-1), true)
	res := waitResult(s.T(), resultCh)

	s.assert.Equal(OutcomeSuccess, res.Outcome)
	s.assert.Equal(`"single-file-etag"`, res.ETag)
	s.assert.Empty(exec.initiated)
}

// Boundary: queueSize=1 serializes part dispatch - never more than one
// part in flight at once.
func (s *coordinatorTestSuite) TestQueueSizeOneSerializesParts() {
	exec := &routedExecutor{partResponder: func(partNumber, size int) s3transport.Response {
		return s3transport.Response{Status: 200, Headers: map[string]string{"Etag": fmt.Sprintf(`"etag%d"`, partNumber)}}
	}}
	client := s.newClient(exec)

	opts := Options{QueueSize: 1, PartSize: 5 * mib, Retry: 1}
	resultCh := make(chan Result, 1)
	mpu, err := New(client, s3creds.Credentials{}, "serial.bin", "", s3creds.ACLNone, "", opts, nil, func(r Result) { resultCh <- r })
	s.Require().NoError(err)

	mpu.SendRequestData(context.Background(), make([]byte, 12*mib), true)
	res := waitResult(s.T(), resultCh)

	s.assert.Equal(OutcomeSuccess, res.Outcome)
	s.assert.LessOrEqual(atomic.LoadInt32(&exec.maxConcurrent), int32(1))
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(coordinatorTestSuite))
}
