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
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var uploadIDPattern = regexp.MustCompile(`<UploadId>([^<]*)</UploadId>`)
var completeETagPattern = regexp.MustCompile(`<ETag>([^<]*)</ETag>`)

// parseUploadID extracts the UploadId from a CreateMultipartUpload response
// body. ok is false if no <UploadId> element is present.
func parseUploadID(body []byte) (string, bool) {
	m := uploadIDPattern.FindSubmatch(body)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// parseCompleteETag extracts the object ETag from a
// CompleteMultipartUploadResult response body, for parity with the
// single-file path where the PUT response's ETag header is surfaced
// directly. ok is false if no <ETag> element is present.
func parseCompleteETag(body []byte) (string, bool) {
	m := completeETagPattern.FindSubmatch(body)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// buildCompleteBody assembles the <CompleteMultipartUpload> commit body
// listed in spec §4.7, with parts sorted ascending by part number.
func buildCompleteBody(etags []partResult) []byte {
	sorted := make([]partResult, len(etags))
	copy(sorted, etags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<CompleteMultipartUpload xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	for _, p := range sorted {
		b.WriteString("<Part><PartNumber>")
		b.WriteString(strconv.Itoa(p.PartNumber))
		b.WriteString("</PartNumber><ETag>")
		b.WriteString(p.ETag)
		b.WriteString("</ETag></Part>")
	}
	b.WriteString(`</CompleteMultipartUpload>`)
	return []byte(b.String())
}
