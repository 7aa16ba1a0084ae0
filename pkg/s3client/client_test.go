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

	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// fakeExecutor replays a canned sequence of responses synchronously,
// standing in for pkg/s3transport.HTTPTransport in these tests.
type fakeExecutor struct {
	responses   []s3transport.Response
	lastURL     string
	lastHeaders map[string]string
}

func (f *fakeExecutor) Do(_ context.Context, _ string, url string, headers map[string]string, _ []byte, _ s3transport.RequestOptions, done s3transport.Completion) {
	f.lastURL = url
	f.lastHeaders = headers
	for _, r := range f.responses {
		done(r)
	}
}

func testCredentials() s3creds.Credentials {
	return s3creds.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET", Region: "us-east-1", Bucket: "bucket"}
}

type clientTestSuite struct {
	suite.Suite
	assert *assert.Assertions
}

func (s *clientTestSuite) SetupTest() {
	s.assert = assert.New(s.T())
}

func (s *clientTestSuite) newClient(exec *fakeExecutor) *Client {
	return NewClient(s3sign.NewSigner(testCredentials()), exec)
}

func (s *clientTestSuite) TestStatSuccess() {
	exec := &fakeExecutor{responses: []s3transport.Response{
		{Status: 200, Headers: map[string]string{"Etag": `"abc"`, "Content-Length": "42"}},
	}}
	client := s.newClient(exec)

	var got Result
	client.Stat(context.Background(), RequestOptions{Path: "key.txt"}, func(r Result) { got = r })

	s.assert.Equal(OutcomeSuccess, got.Outcome)
	s.assert.Equal(`"abc"`, got.ETag)
	s.assert.EqualValues(42, got.ContentLength)
}

func (s *clientTestSuite) TestStatNotFound() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 404, Body: []byte("")}}}
	client := s.newClient(exec)

	var got Result
	client.Stat(context.Background(), RequestOptions{Path: "missing.txt"}, func(r Result) { got = r })

	s.assert.Equal(OutcomeNotFound, got.Outcome)
	s.assert.Equal("NoSuchKey", got.Err.Code)
}

func (s *clientTestSuite) TestDownloadSuccessBodyOwnership() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 206, Body: []byte("partial")}}}
	client := s.newClient(exec)

	var got Result
	client.Download(context.Background(), RequestOptions{Path: "key.txt"}, func(r Result) { got = r })

	s.assert.Equal(OutcomeSuccess, got.Outcome)
	s.assert.Equal([]byte("partial"), got.Body)
}

func (s *clientTestSuite) TestUploadFailureParsesXMLError() {
	body := []byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 403, Body: body}}}
	client := s.newClient(exec)

	var got Result
	client.Upload(context.Background(), RequestOptions{Path: "key.txt", Body: []byte("hi")}, func(r Result) { got = r })

	s.assert.Equal(OutcomeFailure, got.Outcome)
	s.assert.Equal("AccessDenied", got.Err.Code)
	s.assert.Equal("denied", got.Err.Message)
}

func (s *clientTestSuite) TestCommitSucceedsWithNoErrorBody() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 200, Body: []byte(`<CompleteMultipartUploadResult/>`)}}}
	client := s.newClient(exec)

	var got Result
	client.Commit(context.Background(), RequestOptions{Path: "key.txt"}, func(r Result) { got = r })
	s.assert.Equal(OutcomeSuccess, got.Outcome)
}

func (s *clientTestSuite) TestCommitFailsOn200WithErrorBody() {
	body := []byte(`<Error><Code>InternalError</Code><Message>boom</Message></Error>`)
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 200, Body: body}}}
	client := s.newClient(exec)

	var got Result
	client.Commit(context.Background(), RequestOptions{Path: "key.txt"}, func(r Result) { got = r })
	s.assert.Equal(OutcomeFailure, got.Outcome)
	s.assert.Equal("InternalError", got.Err.Code)
}

func (s *clientTestSuite) TestPartSuccessCarriesETag() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 200, Headers: map[string]string{"Etag": `"partetag"`}}}}
	client := s.newClient(exec)

	var got Result
	client.Part(context.Background(), RequestOptions{Path: "key.txt", SearchParams: "partNumber=1&uploadId=abc"}, func(r Result) { got = r })
	s.assert.Equal(OutcomeSuccess, got.Outcome)
	s.assert.Equal(`"partetag"`, got.PartETag)
}

func (s *clientTestSuite) TestDeleteNotFound() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 404}}}
	client := s.newClient(exec)

	var got Result
	client.Delete(context.Background(), RequestOptions{Path: "key.txt"}, func(r Result) { got = r })
	s.assert.Equal(OutcomeNotFound, got.Outcome)
}

func (s *clientTestSuite) TestRangeHeaderAppliedWithoutAffectingSigning() {
	exec := &fakeExecutor{responses: []s3transport.Response{{Status: 206, Body: []byte("x")}}}
	client := s.newClient(exec)

	var got Result
	r := Range{Start: 0, End: 99}
	client.Download(context.Background(), RequestOptions{Path: "key.txt", Range: &r}, func(res Result) { got = res })
	s.assert.Equal(OutcomeSuccess, got.Outcome)
	s.assert.Equal("bytes=0-99", exec.lastHeaders["Range"])
	s.assert.Contains(exec.lastHeaders["Authorization"], "SignedHeaders=host;x-amz-content-sha256;x-amz-date,")
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientTestSuite))
}
