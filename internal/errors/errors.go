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

// Package errors defines sentinel errors for consistent error handling across the application.
// The HTTP layer maps them to status codes before a stream starts, and the CLI maps them
// to exit codes for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and status/exit code mapping
var (
	// ErrValidation indicates bad or missing request input. It is always raised
	// before any header is committed and maps to 400 Bad Request (exit code 2).
	ErrValidation = errors.New("invalid request")

	// ErrSource indicates the upstream record source failed to fetch.
	// Before the first byte it maps to 500; after that it only truncates the stream.
	// Maps to exit code 3.
	ErrSource = errors.New("record source failed")

	// ErrCancelled indicates a caller-initiated termination (client disconnect or
	// deadline expiry). It is never reported as a failure.
	ErrCancelled = errors.New("stream cancelled")

	// ErrPeerClosed indicates the remote end closed the connection, detected at flush time.
	// It is a normal early-exit condition, not a failure.
	ErrPeerClosed = errors.New("peer closed connection")

	// ErrInvalidConfig indicates the loaded configuration cannot be used.
	// Maps to exit code 2.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNetworkFailure indicates a network connection problem talking to a stream endpoint.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")
)
