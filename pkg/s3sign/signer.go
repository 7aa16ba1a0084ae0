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

// Package s3sign is the pure half of the core: credentials plus a request
// descriptor in, signed headers or a presigned URL out. Nothing here ever
// touches the network - that is pkg/s3client's job.
package s3sign

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/pkg/errors"
)

// Method is the closed set of HTTP methods the signer accepts.
type Method string

const (
	MethodGET    Method = "GET"
	MethodPOST   Method = "POST"
	MethodPUT    Method = "PUT"
	MethodDELETE Method = "DELETE"
	MethodHEAD   Method = "HEAD"
)

func validMethod(m Method) bool {
	switch m {
	case MethodGET, MethodPOST, MethodPUT, MethodDELETE, MethodHEAD:
		return true
	default:
		return false
	}
}

// SignOptions is spec §3's SignOptions.
type SignOptions struct {
	Path               string
	Method             Method
	ContentHash        string // defaults to "UNSIGNED-PAYLOAD"
	SearchParams       string // already "k=v&k2=v2", no leading '?'
	ContentDisposition string
	ACL                s3creds.ACL
}

// SignQueryOptions is spec §3's SignQueryOptions.
type SignQueryOptions struct {
	Expires int64 // seconds; zero means the default 86400 (24h)
}

const defaultExpirySeconds = 86400

// Header is one (name, value) pair from a SignResult's ordered header list.
type Header struct {
	Name  string
	Value string
}

// SignResult is spec §3's SignResult.
type SignResult struct {
	AMZDate            string
	Host               string
	Authorization      string
	URL                string
	ContentDisposition string
	SessionToken       string
	ACL                s3creds.ACL
	Headers            []Header
}

// Signer orchestrates the signing-key cache, canonicalization and final
// HMAC described in spec §4.3-§4.4, producing a SignResult per request.
type Signer struct {
	Credentials s3creds.Credentials
	Hasher      Hasher
	Clock       Clock
	KeyCache    *SigningKeyCache
}

// NewSigner builds a Signer with the standard-library Hasher, the system
// clock and the process-wide signing-key cache. Tests override Clock with
// a FixedClock for deterministic output (spec §8 invariant 1).
func NewSigner(creds s3creds.Credentials) *Signer {
	return &Signer{
		Credentials: creds,
		Hasher:      StdHasher{},
		Clock:       systemClock{},
		KeyCache:    &defaultCache,
	}
}

func stripScheme(endpoint string) string {
	if i := strings.Index(endpoint, "://"); i >= 0 {
		return endpoint[i+3:]
	}
	return endpoint
}

func (s *Signer) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now().UTC()
}

func (s *Signer) host() string {
	if s.Credentials.Endpoint != "" {
		return stripScheme(s.Credentials.Endpoint)
	}
	return "s3." + s.Credentials.ResolvedRegion() + ".amazonaws.com"
}

func (s *Signer) validate(opts SignOptions) error {
	if s.Credentials.AccessKeyID == "" || s.Credentials.SecretAccessKey == "" {
		return missingCredentials("access key id and secret access key are required")
	}
	if !validMethod(opts.Method) {
		return invalidMethod(string(opts.Method))
	}
	if s.Credentials.Endpoint != "" {
		if _, err := url.Parse(s.Credentials.Endpoint); err != nil {
			return invalidEndpoint(errors.Wrap(err, "parsing endpoint").Error())
		}
	}
	return nil
}

// Sign implements spec §4.4's header-based signing path, producing
// Authorization and companion headers to send verbatim.
func (s *Signer) Sign(opts SignOptions) (*SignResult, error) {
	if err := s.validate(opts); err != nil {
		return nil, err
	}

	bucket, key, err := ResolvePath(opts.Path, s.Credentials.Bucket)
	if err != nil {
		return nil, invalidPath(err)
	}

	now := s.now()
	date := amzDate(now)
	day := yyyymmdd(now)
	region := s.Credentials.ResolvedRegion()
	host := s.host()

	contentHash := opts.ContentHash
	if contentHash == "" {
		contentHash = unsignedPayload
	}

	hasACL := opts.ACL.IsSet()
	hasDisposition := opts.ContentDisposition != ""
	hasSessionToken := s.Credentials.SessionToken != ""

	hs := buildHeaderSet(host, date, contentHash, hasACL, hasDisposition, hasSessionToken,
		opts.ACL.String(), opts.ContentDisposition, s.Credentials.SessionToken)

	uriPath := CanonicalURIPath(bucket, key)
	canonical := canonicalRequest(string(opts.Method), uriPath, opts.SearchParams, hs, contentHash)
	scope := credentialScope(day, region)
	sts := stringToSign(s.Hasher, date, scope, canonical)

	signingKey := s.KeyCache.SigningKey(s.Hasher, s.Credentials.SecretAccessKey, region, now)
	sig := s.Hasher.HMACSHA256(signingKey[:], []byte(sts))
	signature := hexEncode(sig[:])

	auth := fmt.Sprintf("AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.Credentials.AccessKeyID, scope, hs.signedHeadersList(), signature)

	headers := []Header{
		{Name: "x-amz-content-sha256", Value: contentHash},
		{Name: "x-amz-date", Value: date},
		{Name: "Authorization", Value: auth},
		{Name: "Host", Value: host},
	}
	if hasACL {
		headers = append(headers, Header{Name: "x-amz-acl", Value: opts.ACL.String()})
	}
	if hasSessionToken {
		headers = append(headers, Header{Name: "x-amz-security-token", Value: s.Credentials.SessionToken})
	}
	if hasDisposition {
		headers = append(headers, Header{Name: "Content-Disposition", Value: EncodeSlash(opts.ContentDisposition)})
	}

	scheme := "https"
	if s.Credentials.Scheme() == "http" {
		scheme = "http"
	}
	query := ""
	if opts.SearchParams != "" {
		query = "?" + opts.SearchParams
	}

	return &SignResult{
		AMZDate:            date,
		Host:               host,
		Authorization:      auth,
		URL:                fmt.Sprintf("%s://%s%s%s", scheme, host, uriPath, query),
		ContentDisposition: opts.ContentDisposition,
		SessionToken:       s.Credentials.SessionToken,
		ACL:                opts.ACL,
		Headers:            headers,
	}, nil
}

// SignQuery implements spec §4.4's presigned-URL signing path. The only
// canonical header is host; everything else moves into X-Amz-* query
// parameters in the fixed order the wire-compatibility section demands.
func (s *Signer) SignQuery(opts SignOptions, qopts SignQueryOptions) (*SignResult, error) {
	if err := s.validate(opts); err != nil {
		return nil, err
	}

	bucket, key, err := ResolvePath(opts.Path, s.Credentials.Bucket)
	if err != nil {
		return nil, invalidPath(err)
	}

	expires := qopts.Expires
	if expires == 0 {
		expires = defaultExpirySeconds
	}

	now := s.now()
	date := amzDate(now)
	day := yyyymmdd(now)
	region := s.Credentials.ResolvedRegion()
	host := s.host()
	uriPath := CanonicalURIPath(bucket, key)
	scope := credentialScope(day, region)
	credential := s.Credentials.AccessKeyID + "/" + scope

	hasACL := opts.ACL.IsSet()
	hasSessionToken := s.Credentials.SessionToken != ""

	params := map[string]string{
		"X-Amz-Algorithm":     "AWS4-HMAC-SHA256",
		"X-Amz-Credential":    credential,
		"X-Amz-Date":          date,
		"X-Amz-Expires":       strconv.FormatInt(expires, 10),
		"X-Amz-SignedHeaders": "host",
	}
	if hasACL {
		params["X-Amz-Acl"] = opts.ACL.String()
	}
	if hasSessionToken {
		params["X-Amz-Security-Token"] = s.Credentials.SessionToken
	}

	order := []string{"X-Amz-Acl", "X-Amz-Algorithm", "X-Amz-Credential", "X-Amz-Date", "X-Amz-Expires", "X-Amz-Security-Token", "X-Amz-SignedHeaders"}
	var parts []string
	for _, name := range order {
		v, ok := params[name]
		if !ok {
			continue
		}
		parts = append(parts, name+"="+EncodeSlash(v))
	}
	queryString := strings.Join(parts, "&")

	hs := headerSet{names: []string{"host"}, values: map[string]string{"host": host}}
	canonical := canonicalRequest(string(opts.Method), uriPath, queryString, hs, unsignedPayload)
	sts := stringToSign(s.Hasher, date, scope, canonical)

	signingKey := s.KeyCache.SigningKey(s.Hasher, s.Credentials.SecretAccessKey, region, now)
	sig := s.Hasher.HMACSHA256(signingKey[:], []byte(sts))
	signature := hexEncode(sig[:])

	scheme := "https"
	if s.Credentials.Scheme() == "http" {
		scheme = "http"
	}
	fullQuery := queryString + "&X-Amz-Signature=" + signature

	return &SignResult{
		AMZDate: date,
		Host:    host,
		URL:     fmt.Sprintf("%s://%s%s?%s", scheme, host, uriPath, fullQuery),
		ACL:     opts.ACL,
	}, nil
}

