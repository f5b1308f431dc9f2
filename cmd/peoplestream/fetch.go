// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/people"
	"github.com/sirseerhq/peoplestream/internal/stats"
)

const maxLineSize = 1 << 20

// fetchOptions controls one fetch run.
type fetchOptions struct {
	url      string
	pattern  string
	format   string
	validate bool
	color    bool
	summary  bool
}

func newFetchCommand() *cobra.Command {
	var (
		opts       fetchOptions
		outputFile string
		colorMode  string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Read a people stream line by line",
		Long: `Read an NDJSON people stream and print each record as it arrives.

Each line is decoded on its own, so records are printed while the server is
still producing them. With --validate every line is checked against the person
JSON schema before it is printed.

A stream that ends early under a 200 status cannot be told apart from a short
result unless the connection broke; the count printed at the end is the number
of records actually received.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := context.WithCancel(cmd.Context())
			defer stop()
			if timeout > 0 {
				ctx, stop = context.WithTimeout(ctx, timeout)
				defer stop()
			}

			var out io.Writer = os.Stdout
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			} else {
				color, err := resolveColor(colorMode, os.Stdout)
				if err != nil {
					return err
				}
				if color {
					opts.color = true
					out = colorable.NewColorableStdout()
				}
			}

			return runFetch(ctx, http.DefaultClient, opts, out, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:8080/api/people/stream-sync", "Stream endpoint URL")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Name filter (required)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text (id: name) or ndjson")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Validate every line against the person schema")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a JSON summary of the stream to stderr")
	cmd.Flags().StringVar(&outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "Colorize output: auto, always or never")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 means no limit)")

	return cmd
}

// resolveColor decides whether output to f is colorized.
func resolveColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (use auto, always or never): %w", mode, perrors.ErrValidation)
	}
}

// streamURL adds the pattern query parameter to base.
func streamURL(base, pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("%w: --pattern is required", perrors.ErrValidation)
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: invalid url %q", perrors.ErrValidation, base)
	}
	q := u.Query()
	q.Set("pattern", pattern)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// runFetch reads the stream at opts.url and prints each record to out as soon
// as its line is complete. Progress and the final count go to errOut.
func runFetch(ctx context.Context, client *http.Client, opts fetchOptions, out, errOut io.Writer) error {
	if opts.format != "text" && opts.format != "ndjson" {
		return fmt.Errorf("invalid --format value %q (use text or ndjson): %w", opts.format, perrors.ErrValidation)
	}
	target, err := streamURL(opts.url, opts.pattern)
	if err != nil {
		return err
	}

	var validator *people.Validator
	if opts.validate {
		if validator, err = people.NewValidator(); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson, application/json")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(errOut, "error after reading 0 records\n")
		return requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(errOut, "error after reading 0 records\n")
		return statusError(resp)
	}

	tracker := stats.New()
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		if validator != nil {
			if err := validator.ValidateLine(line); err != nil {
				fmt.Fprintf(errOut, "error after reading %d records\n", tracker.Records())
				return fmt.Errorf("record %d: %w: %w", tracker.Records()+1, perrors.ErrValidation, err)
			}
		}

		var p people.Person
		if err := json.Unmarshal(line, &p); err != nil {
			fmt.Fprintf(errOut, "error after reading %d records\n", tracker.Records())
			return fmt.Errorf("record %d is not a person: %w: %w", tracker.Records()+1, perrors.ErrSource, err)
		}
		tracker.Record(p.ID)

		if err := printPerson(out, opts, p, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error after reading %d records\n", tracker.Records())
		return requestError(ctx, err)
	}

	fmt.Fprintf(errOut, "Total streamed: %d\n", tracker.Records())
	if opts.summary {
		return stats.WriteSummary(errOut, tracker.Summary(opts.pattern, "completed"))
	}
	return nil
}

func printPerson(w io.Writer, opts fetchOptions, p people.Person, line []byte) error {
	var err error
	switch {
	case opts.format == "ndjson":
		_, err = fmt.Fprintf(w, "%s\n", line)
	case opts.color:
		_, err = fmt.Fprintf(w, "\x1b[36m%d\x1b[0m: %s\n", p.ID, p.Name)
	default:
		_, err = fmt.Fprintf(w, "%d: %s\n", p.ID, p.Name)
	}
	return err
}

// requestError classifies a transport failure.
func requestError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", perrors.ErrCancelled, err)
	}
	return fmt.Errorf("%w: %w", perrors.ErrNetworkFailure, err)
}

// statusError turns a non-200 response into an error carrying the server's message.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}

	kind := perrors.ErrSource
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		kind = perrors.ErrValidation
	}
	return fmt.Errorf("server returned %s: %s: %w", resp.Status, msg, kind)
}
