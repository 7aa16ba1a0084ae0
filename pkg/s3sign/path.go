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
	"strings"
)

const (
	maxEncodedBucketLen = 63
	maxEncodedKeyLen    = 1024
)

// isUnreserved reports whether b is an RFC 3986 unreserved byte, which
// percent-encoding never escapes: ASCII letters, digits, '-', '.', '_', '~'.
func isUnreserved(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

const upperhex = "0123456789ABCDEF"

// encodePath percent-encodes s per RFC 3986. When preserveSlash is true,
// '/' passes through unescaped (used for the bucket/key portion of a
// canonical path); when false, '/' is escaped like any other reserved byte
// (used for Content-Disposition, "slash-encoded mode" per spec §4.4).
func encodePath(s string, preserveSlash bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || (preserveSlash && c == '/') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xF])
	}
	return b.String()
}

// EncodeKey percent-encodes a bucket or object key, preserving '/'.
func EncodeKey(s string) string {
	return encodePath(s, true)
}

// EncodeSlash percent-encodes a value with no slash exception - the
// "slash-encoded mode" spec §4.4 requires for Content-Disposition and for
// every value placed into a presigned URL's query string.
func EncodeSlash(s string) string {
	return encodePath(s, false)
}

// ResolvePath implements spec §4.1: bucket/key resolution from a logical
// path plus an optional credential-supplied bucket. Leading '/' or '\' is
// stripped and '\' separators are normalized to '/'; an empty key is
// rejected. The returned bucket and key are percent-encoded, '/'-preserving,
// and size-bounded (63 bytes encoded bucket, 1024 bytes encoded key).
func ResolvePath(path string, credentialBucket string) (bucket, key string, err error) {
	normalized := strings.ReplaceAll(path, "\\", "/")
	normalized = strings.TrimLeft(normalized, "/")

	if credentialBucket != "" {
		bucket = credentialBucket
		key = normalized
	} else {
		idx := strings.Index(normalized, "/")
		if idx < 0 {
			bucket = normalized
			key = ""
		} else {
			bucket = normalized[:idx]
			key = normalized[idx+1:]
		}
	}

	if key == "" {
		return "", "", &InvalidPathError{Path: path, Reason: "empty key"}
	}

	encBucket := EncodeKey(bucket)
	encKey := EncodeKey(key)

	if len(encBucket) > maxEncodedBucketLen {
		return "", "", &InvalidPathError{Path: path, Reason: "encoded bucket exceeds 63 bytes"}
	}
	if len(encKey) > maxEncodedKeyLen {
		return "", "", &InvalidPathError{Path: path, Reason: "encoded key exceeds 1024 bytes"}
	}

	return encBucket, encKey, nil
}

// CanonicalURIPath joins an already-encoded bucket and key into the
// canonical "/<bucket>/<key>" request path.
func CanonicalURIPath(bucket, key string) string {
	return "/" + bucket + "/" + key
}
