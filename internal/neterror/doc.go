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

// Package neterror classifies the errors a streaming pipeline sees at its two
// suspension points: the upstream fetch and the downstream write/flush.
//
// The distinction matters because the pipeline treats them very differently:
//   - cancellation (client disconnect, deadline) is a clean teardown, never a failure
//   - a closed peer is a normal early exit detected when flushing
//   - transient upstream errors may be retried before any record is emitted
//
// Classification first walks the error chain (errors.Is / errors.As) and falls
// back to matching well-known messages, because net/http and database drivers
// do not always wrap their syscall errors.
package neterror
