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

// Package source provides the record sources a people stream pulls from.
//
// Every source follows the same lazy, pull-based contract: Open starts a query
// for a substring pattern and returns a Cursor; each Cursor.Next call yields the
// next Person in ascending id order, or io.EOF once the result is exhausted.
// Cursor.Close releases the underlying resources (rows, connections, producer
// goroutines) exactly once, no matter whether iteration finished, was cancelled,
// or failed.
//
// Errors returned by Open and Next wrap either errors.ErrCancelled (the caller's
// context ended) or errors.ErrSource (the fetch itself failed), never both.
//
// Available sources:
//   - SQLSource: SQLite through database/sql, one row per Next call
//   - GraphQLSource: a remote people directory paged over GraphQL
//   - Memory: a fixed in-process data set
//   - Async: wraps any Source so fetching runs in a producer goroutine
package source
