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

package integration

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirseerhq/peoplestream/test/testutil"
)

func TestCLI_Version(t *testing.T) {
	result := testutil.RunCLI(t, []string{"--version"}, nil)
	testutil.AssertCLISuccess(t, result)
	if !strings.Contains(result.Stdout, "peoplestream") {
		t.Errorf("version output = %q", result.Stdout)
	}
}

func TestCLI_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		wantCode int
		wantErr  string
	}{
		{
			name:     "fetch without pattern",
			args:     []string{"fetch", "--url", "http://127.0.0.1:1/api/people/stream-sync"},
			wantCode: 2,
			wantErr:  "--pattern is required",
		},
		{
			name:     "fetch with bad color mode",
			args:     []string{"fetch", "--pattern", "AB", "--color", "rainbow"},
			wantCode: 2,
			wantErr:  "invalid --color value",
		},
		{
			name:     "fetch from a closed port",
			args:     []string{"fetch", "--url", "http://127.0.0.1:1/api/people/stream-sync", "--pattern", "AB"},
			wantCode: 3,
			wantErr:  "error after reading 0 records",
		},
		{
			name:     "serve with zero batch size",
			args:     []string{"serve", "--driver", "memory", "--batch-size", "0"},
			wantCode: 2,
			wantErr:  "batch size must be at least 1",
		},
		{
			name:     "serve with unknown driver",
			args:     []string{"serve", "--driver", "postgres"},
			wantCode: 2,
			wantErr:  "unknown source driver",
		},
		{
			name:     "serve with bad batch size from env is ignored but bad log level is not",
			args:     []string{"serve", "--driver", "memory"},
			env:      map[string]string{"PEOPLESTREAM_BATCH_SIZE": "abc", "PEOPLESTREAM_LOG_LEVEL": "chatty"},
			wantCode: 2,
			wantErr:  "unknown log level",
		},
		{
			name:     "seed with negative count",
			args:     []string{"seed", "--count", "-1"},
			wantCode: 2,
			wantErr:  "count cannot be negative",
		},
		{
			name:     "unknown command",
			args:     []string{"frobnicate"},
			wantCode: 1,
			wantErr:  "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.RunCLI(t, tt.args, tt.env)
			testutil.AssertCLIError(t, result, tt.wantErr)
			testutil.AssertExitCode(t, result, tt.wantCode)
		})
	}
}

func TestCLI_SeedServeFetch(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "people.db")

	result := testutil.RunCLI(t, []string{"seed", "--dsn", dsn, "--count", "120"}, nil)
	testutil.AssertCLISuccess(t, result)

	addr := testutil.FreeAddr(t)
	base := "http://" + addr
	server := testutil.StartCLI(t, []string{"serve", "--dsn", dsn, "--addr", addr, "--batch-size", "16", "--log-format", "json"}, nil)
	testutil.WaitForHTTP(t, base+"/healthz", 10*time.Second)

	var first string
	for _, path := range []string{
		"/api/people/stream-sync",
		"/api/people/stream-async",
		"/api/people/stream-batched",
		"/api/people/stream-pipewriter",
	} {
		result := testutil.RunCLI(t, []string{"fetch", "--url", base + path, "--pattern", "Nov", "--format", "ndjson", "--validate"}, nil)
		testutil.AssertCLISuccess(t, result)

		if !strings.Contains(result.Stderr, "Total streamed: ") || strings.Contains(result.Stderr, "Total streamed: 0") {
			t.Errorf("%s: unexpected summary %q", path, result.Stderr)
		}
		if first == "" {
			first = result.Stdout
		} else if result.Stdout != first {
			t.Errorf("%s body differs from the stream-sync body", path)
		}
	}

	if err := server.Stop(t); err != nil {
		t.Errorf("serve exited with %v\nOutput: %s", err, server.Output())
	}
	if !strings.Contains(server.Output(), `"msg":"stream completed"`) {
		t.Errorf("server did not log completed streams:\n%s", server.Output())
	}
}
