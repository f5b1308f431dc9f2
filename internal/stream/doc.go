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

// Package stream runs one NDJSON response from a record source to an HTTP client.
//
// A Session owns the response for its whole lifetime. It pulls people from a
// source.Cursor one at a time, encodes each as a line, and hands the line to the
// flush strategy chosen for the endpoint. The session moves through
//
//	HeadersPending -> Streaming -> Completed | Aborted
//
// and commits the status line and headers exactly once, either before the first
// fetch (CommitEarly) or lazily when the first body byte is written. Until the
// commit nothing has reached the client, so the caller can still answer with a
// clean error status. After the commit a failure can only truncate the body:
// NDJSON has no end-of-stream marker, so the caller aborts the connection when
// Result.Outcome is OutcomeSourceError on a committed response, and clients must
// treat an unexpected end of the connection as a failed stream.
//
// The request context is the only cancellation signal. It is checked before
// every pull and every write, and it is passed to the cursor so a blocked fetch
// can be interrupted. The cursor is always closed before Run returns.
package stream
