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

package main

import (
	"fmt"

	"github.com/nimbusfs/s3core/pkg/s3sign"

	"github.com/spf13/cobra"
)

var (
	presignKey     string
	presignMethod  string
	presignExpires int64
)

var presignCmd = &cobra.Command{
	Use:   "presign",
	Short: "Print a presigned URL for an object",
	RunE:  runPresign,
}

func init() {
	presignCmd.Flags().StringVar(&presignKey, "key", "", "object key")
	presignCmd.Flags().StringVar(&presignMethod, "method", "GET", "HTTP method: GET, PUT, DELETE, HEAD")
	presignCmd.Flags().Int64Var(&presignExpires, "expires", 3600, "expiry in seconds, 1-604800")
	_ = presignCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(presignCmd)
}

func runPresign(cmd *cobra.Command, args []string) error {
	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	signer := s3sign.NewSigner(creds)
	result, err := signer.SignQuery(
		s3sign.SignOptions{Path: presignKey, Method: s3sign.Method(presignMethod)},
		s3sign.SignQueryOptions{Expires: presignExpires},
	)
	if err != nil {
		return fmt.Errorf("presigning: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.URL)
	return nil
}
