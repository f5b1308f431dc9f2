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

// Package main implements the peoplestream command-line interface.
// It serves a people directory over HTTP as newline-delimited JSON and
// includes a client for reading those streams.
//
// The CLI supports:
//   - Serving the array and streaming endpoints (serve)
//   - Reading a stream line by line, optionally validating every line (fetch)
//   - Creating and populating a local SQLite database (seed)
//
// Usage:
//
//	peoplestream seed --dsn people.db --count 1000
//	peoplestream serve --dsn people.db --addr :8080
//	peoplestream fetch --url http://localhost:8080/api/people/stream-batched --pattern Nov
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Invalid input or configuration
//   - 3: Network or source error
package main
