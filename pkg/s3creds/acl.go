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

package s3creds

// ACL is the closed set of canned S3 ACLs. Only their wire strings are
// modeled; the core never evaluates what an ACL actually grants.
type ACL int

const (
	ACLNone ACL = iota
	ACLPrivate
	ACLPublicRead
	ACLPublicReadWrite
	ACLAWSExecRead
	ACLAuthenticatedRead
	ACLBucketOwnerRead
	ACLBucketOwnerFullControl
	ACLLogDeliveryWrite
)

var aclWire = map[ACL]string{
	ACLPrivate:                "private",
	ACLPublicRead:             "public-read",
	ACLPublicReadWrite:        "public-read-write",
	ACLAWSExecRead:            "aws-exec-read",
	ACLAuthenticatedRead:      "authenticated-read",
	ACLBucketOwnerRead:        "bucket-owner-read",
	ACLBucketOwnerFullControl: "bucket-owner-full-control",
	ACLLogDeliveryWrite:       "log-delivery-write",
}

var wireToACL = func() map[string]ACL {
	m := make(map[string]ACL, len(aclWire))
	for acl, wire := range aclWire {
		m[wire] = acl
	}
	return m
}()

// String returns the canned-ACL wire string, or "" for ACLNone.
func (a ACL) String() string {
	return aclWire[a]
}

// IsSet reports whether a is a real canned ACL (not ACLNone).
func (a ACL) IsSet() bool {
	_, ok := aclWire[a]
	return ok
}

// ParseACL maps a canned-ACL wire string back to its ACL value. ok is false
// for any string outside the closed set of eight canned ACLs.
func ParseACL(wire string) (acl ACL, ok bool) {
	acl, ok = wireToACL[wire]
	return acl, ok
}
