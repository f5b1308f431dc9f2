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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct validation error",
			err:      ErrValidation,
			sentinel: ErrValidation,
			want:     true,
		},
		{
			name:     "wrapped validation error",
			err:      fmt.Errorf("pattern is required: %w", ErrValidation),
			sentinel: ErrValidation,
			want:     true,
		},
		{
			name:     "cancellation is not a source failure",
			err:      fmt.Errorf("query aborted: %w", ErrCancelled),
			sentinel: ErrSource,
			want:     false,
		},
		{
			name:     "wrapped source error",
			err:      fmt.Errorf("scan row: %w", ErrSource),
			sentinel: ErrSource,
			want:     true,
		},
		{
			name:     "peer closed is distinct from network failure",
			err:      ErrPeerClosed,
			sentinel: ErrNetworkFailure,
			want:     false,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrSource,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrValidation, "invalid request"},
		{ErrSource, "record source failed"},
		{ErrCancelled, "stream cancelled"},
		{ErrPeerClosed, "peer closed connection"},
		{ErrInvalidConfig, "invalid configuration"},
		{ErrNetworkFailure, "network connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
