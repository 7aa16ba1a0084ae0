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

package s3sign

import (
	"sort"
	"strings"
)

const unsignedPayload = "UNSIGNED-PAYLOAD"

// headerSet is one of the eight signed-header combinations from spec §4.4's
// 2x2x2 cross product of {acl?, contentDisposition?, sessionToken?}, always
// including host, x-amz-content-sha256, x-amz-date. buildHeaderSet builds it
// per call by sorting the present names; nothing is precomputed.
type headerSet struct {
	names  []string // lexicographically sorted, lowercase
	values map[string]string
}

func buildHeaderSet(host, amzDate, contentHash string, hasACL, hasDisposition, hasSessionToken bool, acl, disposition, sessionToken string) headerSet {
	values := map[string]string{
		"host":                 host,
		"x-amz-content-sha256": contentHash,
		"x-amz-date":           amzDate,
	}
	if hasACL {
		values["x-amz-acl"] = acl
	}
	if hasDisposition {
		values["content-disposition"] = EncodeSlash(disposition)
	}
	if hasSessionToken {
		values["x-amz-security-token"] = sessionToken
	}

	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	return headerSet{names: names, values: values}
}

// signedHeadersList returns the ';'-joined, lowercase, lexicographically
// ordered signed-header names, e.g. "host;x-amz-content-sha256;x-amz-date".
func (hs headerSet) signedHeadersList() string {
	return strings.Join(hs.names, ";")
}

// canonicalHeaders returns the "name:value\n" block, one line per signed
// header in lexicographic order.
func (hs headerSet) canonicalHeaders() string {
	var b strings.Builder
	for _, n := range hs.names {
		b.WriteString(n)
		b.WriteByte(':')
		b.WriteString(hs.values[n])
		b.WriteByte('\n')
	}
	return b.String()
}

// canonicalRequest assembles spec §4.4's header-mode canonical request:
//
//	METHOD\n
//	/<bucket>/<key>\n
//	<search_params_without_leading_?>\n
//	<header-name:header-value\n>*
//	\n
//	<signed_headers_semicolon_list>\n
//	<content_hash_or_"UNSIGNED-PAYLOAD">
func canonicalRequest(method, uriPath, queryString string, hs headerSet, contentHash string) string {
	if contentHash == "" {
		contentHash = unsignedPayload
	}
	return strings.Join([]string{
		method,
		uriPath,
		queryString,
		hs.canonicalHeaders(),
		hs.signedHeadersList(),
		contentHash,
	}, "\n")
}

// stringToSign builds the four-line SigV4 string-to-sign: the algorithm
// tag, the AMZ date, the credential scope, and the canonical request hash.
func stringToSign(h Hasher, amzDate, credentialScope, canonical string) string {
	sum := h.SHA256([]byte(canonical))
	return "AWS4-HMAC-SHA256\n" + amzDate + "\n" + credentialScope + "\n" + hexEncode(sum[:])
}

func credentialScope(date, region string) string {
	return date + "/" + region + "/s3/aws4_request"
}

const hexDigits = "0123456789abcdef"

// hexEncode is a tiny, allocation-minimal lowercase hex encoder; used
// pervasively enough in the signer's hot path (every signature, every
// cache miss) that it is worth not reaching for encoding/hex's extra
// indirection.
func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xF]
	}
	return string(out)
}
