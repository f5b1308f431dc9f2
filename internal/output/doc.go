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

// Package output provides utilities for writing people records in NDJSON (Newline Delimited JSON) format
// to an HTTP response. NDJSON is a convenient format for streaming large result sets where each line
// contains a valid JSON object, so a client can start processing before the query has finished.
//
// The package has three parts:
//   - LineEncoder turns one record into one compact JSON line ending in '\n'
//   - Sink is the byte destination with an explicit Flush (see NewResponseSink)
//   - Strategy decides when written bytes are flushed: Eager after every line,
//     Batched after every batchSize lines and once more at the end
//
// Both strategies produce byte-identical output for the same records; they differ
// only in when bytes become visible to the transport. Every flush reports a
// FlushSignal; once it is PeerClosed the caller must stop pulling records.
//
// Example usage:
//
//	enc := output.NewLineEncoder()
//	strategy := output.NewBatched(output.NewResponseSink(w), 32)
//	for _, p := range people {
//	    if sig, err := strategy.Write(enc.Encode(p)); sig == output.PeerClosed {
//	        log.Printf("client went away: %v", err)
//	        return
//	    }
//	}
//	strategy.Close()
package output
