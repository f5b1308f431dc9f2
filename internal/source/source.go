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

package source

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/neterror"
	"github.com/sirseerhq/peoplestream/internal/people"
)

// Source opens lazy queries over the people directory.
type Source interface {
	// Open starts a query for people whose name contains pattern.
	// No record is fetched until the first Next call.
	Open(ctx context.Context, pattern string) (Cursor, error)
}

// Cursor is a lazy sequence of people in ascending id order.
// A Cursor is used by one goroutine at a time.
type Cursor interface {
	// Next returns the next person, or io.EOF when the sequence is exhausted.
	Next(ctx context.Context) (people.Person, error)

	// Close releases the cursor's resources. It is idempotent.
	Close() error
}

// ErrCursorClosed is returned by Next after Close.
var ErrCursorClosed = errors.New("cursor is closed")

var inspector = neterror.NewInspector()

// classify wraps err as a cancellation when the caller's context has ended or the
// error says so, and as a source failure otherwise.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || inspector.IsCancelled(err) {
		return fmt.Errorf("%s: %w: %w", op, perrors.ErrCancelled, err)
	}
	return fmt.Errorf("%s: %w: %w", op, perrors.ErrSource, err)
}
