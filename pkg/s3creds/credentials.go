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

// Package s3creds holds the data the core never derives on its own: the
// credential bundle and the canned-ACL enum. Ingestion from env vars,
// options objects or config files is left to the host, per the core's
// deliberately-narrow scope - this package only models the shape of a
// ready-to-use value and the handful of derivations (region guessing)
// that are pure functions of it.
package s3creds

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Credentials is shared by reference across concurrent signing and
// multipart operations. Any field may be empty except for signing-time
// requirements (AccessKeyID, SecretAccessKey); Region defaults via
// GuessRegion(Endpoint) when empty.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	SessionToken    string
	InsecureHTTP    bool
}

// FromMap decodes a generic map (as parsed from a host's YAML/JSON config)
// into a Credentials value, the same mapstructure-based idiom the teacher
// uses throughout common/config for decoding component options.
func FromMap(m map[string]interface{}) (Credentials, error) {
	var c Credentials
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Credentials{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// ResolvedRegion returns Region if set, otherwise GuessRegion(Endpoint).
func (c Credentials) ResolvedRegion() string {
	if c.Region != "" {
		return c.Region
	}
	return GuessRegion(c.Endpoint)
}

// Scheme returns "http" or "https" depending on InsecureHTTP and on whether
// Endpoint itself was given as an http:// URL.
func (c Credentials) Scheme() string {
	if c.InsecureHTTP || strings.HasPrefix(c.Endpoint, "http://") {
		return "http"
	}
	return "https"
}

// GuessRegion implements spec §4.2: endpoints ending in
// ".r2.cloudflarestorage.com" guess "auto"; endpoints containing both "s3."
// and ".amazonaws.com" guess the substring between them; anything else
// (including an empty endpoint) falls back to "us-east-1".
func GuessRegion(endpoint string) string {
	host := stripScheme(endpoint)

	if strings.HasSuffix(host, ".r2.cloudflarestorage.com") {
		return "auto"
	}

	if i := strings.Index(host, "s3."); i >= 0 {
		rest := host[i+len("s3."):]
		if j := strings.Index(rest, ".amazonaws.com"); j >= 0 {
			return rest[:j]
		}
	}

	return "us-east-1"
}

func stripScheme(endpoint string) string {
	if i := strings.Index(endpoint, "://"); i >= 0 {
		return endpoint[i+3:]
	}
	return endpoint
}
