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

package output

import (
	"bytes"
	"encoding/json"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// LineEncoder encodes people as NDJSON lines.
// It reuses one buffer, so it is not safe for concurrent use; each stream owns one.
type LineEncoder struct {
	buf     bytes.Buffer
	encoder *json.Encoder
}

// NewLineEncoder creates a LineEncoder producing compact lower-camel-case JSON.
func NewLineEncoder() *LineEncoder {
	e := &LineEncoder{}
	e.encoder = json.NewEncoder(&e.buf)
	e.encoder.SetEscapeHTML(false)
	return e
}

// Encode returns p as one JSON object followed by exactly one '\n'.
// The returned slice is only valid until the next call to Encode.
func (e *LineEncoder) Encode(p people.Person) []byte {
	e.buf.Reset()
	// An int and a string always marshal; json.Encoder appends the newline.
	_ = e.encoder.Encode(p)
	return e.buf.Bytes()
}

// Encode is the allocating form of LineEncoder.Encode.
func Encode(p people.Person) []byte {
	line := NewLineEncoder().Encode(p)
	out := make([]byte, len(line))
	copy(out, line)
	return out
}

// AppendLine appends the NDJSON line for p to dst and returns the extended slice.
func AppendLine(dst []byte, p people.Person) []byte {
	return append(dst, NewLineEncoder().Encode(p)...)
}
