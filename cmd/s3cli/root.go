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

	"github.com/nimbusfs/s3core/internal/s3log"
	"github.com/nimbusfs/s3core/pkg/s3client"
	"github.com/nimbusfs/s3core/pkg/s3creds"
	"github.com/nimbusfs/s3core/pkg/s3sign"
	"github.com/nimbusfs/s3core/pkg/s3transport"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "s3cli",
	Short:         "s3cli signs and issues S3-compatible requests using pkg/s3client and pkg/s3multipart.",
	Long:          "s3cli is a thin demonstration front-end over this module's SigV4 signer and multipart upload coordinator - enough to presign a URL or push a file to an S3-compatible endpoint without writing a host program.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")

	rootCmd.PersistentFlags().String("endpoint", "", "S3-compatible endpoint URL")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name")
	rootCmd.PersistentFlags().String("access-key", "", "access key id")
	rootCmd.PersistentFlags().String("secret-key", "", "secret access key")
	rootCmd.PersistentFlags().String("session-token", "", "temporary session token")
	rootCmd.PersistentFlags().String("region", "", "AWS region; guessed from endpoint when empty")
	rootCmd.PersistentFlags().Bool("insecure-http", false, "sign for plain HTTP instead of HTTPS")
	rootCmd.PersistentFlags().String("proxy-url", "", "HTTP proxy URL for the transport")
	rootCmd.PersistentFlags().String("log-level", "err", "one of: crit, err, warn, info, debug, trace")

	for _, name := range []string{"endpoint", "bucket", "access-key", "secret-key", "session-token", "region", "insecure-http", "proxy-url"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, ok := parseLogLevel(rootCmd.PersistentFlags().Lookup("log-level").Value.String())
	if !ok {
		level = s3log.LevelErr
	}
	s3log.SetLevel(level)
}

func parseLogLevel(s string) (s3log.Level, bool) {
	switch s {
	case "crit":
		return s3log.LevelCrit, true
	case "err":
		return s3log.LevelErr, true
	case "warn":
		return s3log.LevelWarn, true
	case "info":
		return s3log.LevelInfo, true
	case "debug":
		return s3log.LevelDebug, true
	case "trace":
		return s3log.LevelTrace, true
	default:
		return 0, false
	}
}

// loadCredentials merges a YAML config file (if --config-file was given)
// with the persistent flags - flags win on conflict, the same precedence
// the teacher's common/config package documents - and decodes the result
// into s3creds.Credentials via the mapstructure-based idiom that package
// already models.
func loadCredentials() (s3creds.Credentials, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			return s3creds.Credentials{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	m := map[string]interface{}{
		"AccessKeyID":     viper.GetString("access-key"),
		"SecretAccessKey": viper.GetString("secret-key"),
		"Region":          viper.GetString("region"),
		"Endpoint":        viper.GetString("endpoint"),
		"Bucket":          viper.GetString("bucket"),
		"SessionToken":    viper.GetString("session-token"),
		"InsecureHTTP":    viper.GetBool("insecure-http"),
	}
	return s3creds.FromMap(m)
}

// buildClient wires a Signer and the reference net/http Executor into a
// Client, the same pairing pkg/s3client's own tests construct by hand.
func buildClient(creds s3creds.Credentials) *s3client.Client {
	return s3client.NewClient(s3sign.NewSigner(creds), s3transport.NewHTTPTransport())
}

// Execute runs the root command; cmd/s3cli's only caller is main().
func Execute() error {
	return rootCmd.Execute()
}
