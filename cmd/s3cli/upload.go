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
	"io"
	"os"
	"time"

	"github.com/nimbusfs/s3core/internal/s3stats"
	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3multipart"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const mib = 1 << 20

var (
	uploadFile      string
	uploadKey       string
	uploadPartMiB   int64
	uploadQueueSize int
	uploadRetry     int
	uploadACL       string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a local file through the multipart upload coordinator",
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "local file to upload")
	uploadCmd.Flags().StringVar(&uploadKey, "key", "", "destination object key")
	uploadCmd.Flags().Int64Var(&uploadPartMiB, "part-size-mib", 8, "part size in MiB, 5-5120")
	uploadCmd.Flags().IntVar(&uploadQueueSize, "queue-size", 4, "max in-flight parts, 1-64")
	uploadCmd.Flags().IntVar(&uploadRetry, "retry", 3, "per-request retry budget, 0-255")
	uploadCmd.Flags().StringVar(&uploadACL, "acl", "", "canned ACL, e.g. private, public-read")
	_ = uploadCmd.MarkFlagRequired("file")
	_ = uploadCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	acl := s3creds.ACLNone
	if uploadACL != "" {
		parsed, ok := s3creds.ParseACL(uploadACL)
		if !ok {
			return fmt.Errorf("unrecognized canned ACL %q", uploadACL)
		}
		acl = parsed
	}

	opts := s3multipart.Options{
		QueueSize: uploadQueueSize,
		PartSize:  uploadPartMiB * mib,
		Retry:     uploadRetry,
	}

	f, err := os.Open(uploadFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", uploadFile, err)
	}
	defer f.Close()

	progress := s3stats.New()
	client := buildClient(creds)

	done := make(chan s3multipart.Result, 1)
	stop := make(chan struct{})
	mpu, err := s3multipart.New(client, creds, uploadKey, "", acl, viper.GetString("proxy-url"), opts, progress, func(r s3multipart.Result) {
		done <- r
		close(stop)
	})
	if err != nil {
		return fmt.Errorf("invalid upload options: %w", err)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go reportProgress(cmd, ticker, progress, stop)

	buf := make([]byte, opts.PartSize)
	for {
		n, readErr := f.Read(buf)
		eof := readErr == io.EOF
		if n > 0 || eof {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			for mpu.SendRequestData(cmd.Context(), chunk, eof) {
				chunk = nil
				time.Sleep(10 * time.Millisecond)
			}
		}
		if eof {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", uploadFile, readErr)
		}
	}

	result := <-done
	if result.Outcome != s3multipart.OutcomeSuccess {
		return fmt.Errorf("upload failed: %s: %s", result.Err.Code, result.Err.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "upload complete: %s etag=%s\n", uploadKey, result.ETag)
	return nil
}

func reportProgress(cmd *cobra.Command, ticker *time.Ticker, progress *s3stats.Throughput, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			mean, stdDev := progress.Snapshot()
			if mean > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%.1f MiB/s (±%.1f)\n", mean/mib, stdDev/mib)
			}
		case <-stop:
			return
		}
	}
}
