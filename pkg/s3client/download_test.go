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
	"testing"

	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type downloadTestSuite struct {
	suite.Suite
	assert *assert.Assertions
}

func (s *downloadTestSuite) SetupTest() {
	s.assert = assert.New(s.T())
}

func (s *downloadTestSuite) TestSuccessfulStreamDeliversAllBytesThenFinalChunk() {
	exec := &fakeExecutor{responses: []s3transport.Response{
		{Status: 206, Body: []byte("hello "), HasMore: true},
		{Status: 206, Body: []byte("world"), HasMore: true},
		{Status: 206, HasMore: false},
	}}
	client := NewClient(s3sign.NewSigner(testCredentials()), exec)

	var received []byte
	var sawFinal bool
	dl := NewStreamingDownload(client, nil, func(c Chunk) {
		received = append(received, c.Data...)
		if !c.HasMore {
			sawFinal = true
			s.assert.Nil(c.Err)
		}
	})
	dl.Start(context.Background(), RequestOptions{Path: "big.bin"})

	s.assert.Equal("hello world", string(received))
	s.assert.True(sawFinal)
}

func (s *downloadTestSuite) TestFailureWaitsForHasMoreFalseBeforeParsingBody() {
	exec := &fakeExecutor{responses: []s3transport.Response{
		{Status: 500, Body: []byte(`<Error><Code>`), HasMore: true},
		{Status: 500, Body: []byte(`InternalError</Code><Message>boom</Message></Error>`), HasMore: false},
	}}
	client := NewClient(s3sign.NewSigner(testCredentials()), exec)

	var chunks []Chunk
	dl := NewStreamingDownload(client, nil, func(c Chunk) { chunks = append(chunks, c) })
	dl.Start(context.Background(), RequestOptions{Path: "big.bin"})

	// Only the terminal chunk is ever delivered while the body is split
	// across a failing response - the partial XML wouldn't parse on its own.
	s.Require().Len(chunks, 1)
	s.assert.False(chunks[0].HasMore)
	s.assert.Equal("InternalError", chunks[0].Err.Code)
	s.assert.Equal("boom", chunks[0].Err.Message)
}

func (s *downloadTestSuite) TestTransportFailureReportsImmediately() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Fail: assertErr{"connection reset"}}}}
	client := NewClient(s3sign.NewSigner(testCredentials()), exec)

	var got Chunk
	dl := NewStreamingDownload(client, nil, func(c Chunk) { got = c })
	dl.Start(context.Background(), RequestOptions{Path: "big.bin"})

	s.assert.False(got.HasMore)
	s.assert.Equal("TransportError", got.Err.Code)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestDownloadSuite(t *testing.T) {
	suite.Run(t, new(downloadTestSuite))
}
