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
	"errors"
	"io"
	"net/http"
)

// Sink is the byte destination of a stream. Write may buffer; Flush makes every
// byte written so far visible to the transport.
type Sink interface {
	io.Writer
	Flush() error
}

// ResponseSink adapts an http.ResponseWriter to Sink using http.ResponseController,
// so flushing works through middleware that wraps the writer.
type ResponseSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewResponseSink creates a Sink writing to w.
func NewResponseSink(w http.ResponseWriter) *ResponseSink {
	return &ResponseSink{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// Write writes p to the response body.
func (s *ResponseSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Flush pushes buffered response bytes to the client. Writers that cannot flush
// are treated as flushing implicitly.
func (s *ResponseSink) Flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
