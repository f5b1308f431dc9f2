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

package neterror

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

// Inspector classifies errors raised while fetching records or writing them out.
type Inspector interface {
	// IsCancelled returns true if the error was caused by caller-initiated termination.
	IsCancelled(err error) bool

	// IsPeerClosed returns true if the error means the remote end went away.
	IsPeerClosed(err error) bool

	// IsTransient returns true if the operation may succeed when retried.
	IsTransient(err error) bool
}

// StreamErrorInspector implements Inspector for HTTP response sinks and record sources.
type StreamErrorInspector struct{}

// NewInspector creates a new StreamErrorInspector.
func NewInspector() Inspector {
	return &StreamErrorInspector{}
}

// IsCancelled checks for context cancellation and deadline expiry.
func (i *StreamErrorInspector) IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, perrors.ErrCancelled) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "interrupted")
}

// IsPeerClosed checks for the errors a write or flush returns once the client is gone.
func (i *StreamErrorInspector) IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, perrors.ErrPeerClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "client disconnected") ||
		strings.Contains(errStr, "http2: stream closed")
}

// IsTransient checks for network errors that are worth another attempt.
func (i *StreamErrorInspector) IsTransient(err error) bool {
	if err == nil || i.IsCancelled(err) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}
