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

// Package testutil provides common test helpers for peoplestream
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/people"
	"github.com/sirseerhq/peoplestream/internal/source"
)

// FakeSource is a scriptable source.Source that counts how it is used.
type FakeSource struct {
	// People to return, in order, regardless of pattern
	People []people.Person

	// OpenErr is returned by Open when set
	OpenErr error

	// FailAfter makes Next fail with a source error after that many records; 0 never fails
	FailAfter int

	// BlockAfter makes Next block until ctx ends after that many records; 0 never blocks
	BlockAfter int

	// Delivered is signalled (non-blocking) each time Next returns a record
	Delivered chan people.Person

	// Track calls for verification
	Opens       atomic.Int32
	Nexts       atomic.Int32
	Closes      atomic.Int32
	LastPattern atomic.Value
}

// NewFakeSource creates a FakeSource over ps.
func NewFakeSource(ps ...people.Person) *FakeSource {
	return &FakeSource{People: ps}
}

// Open implements source.Source.
func (f *FakeSource) Open(ctx context.Context, pattern string) (source.Cursor, error) {
	f.Opens.Add(1)
	f.LastPattern.Store(pattern)
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open: %w: %w", perrors.ErrCancelled, err)
	}
	return &fakeCursor{src: f}, nil
}

// Pattern returns the pattern of the last Open call.
func (f *FakeSource) Pattern() string {
	p, _ := f.LastPattern.Load().(string)
	return p
}

type fakeCursor struct {
	src  *FakeSource
	pos  int
	once sync.Once
}

func (c *fakeCursor) Next(ctx context.Context) (people.Person, error) {
	c.src.Nexts.Add(1)
	if err := ctx.Err(); err != nil {
		return people.Person{}, fmt.Errorf("next: %w: %w", perrors.ErrCancelled, err)
	}
	if c.src.FailAfter > 0 && c.pos >= c.src.FailAfter {
		return people.Person{}, fmt.Errorf("next: %w: connection lost", perrors.ErrSource)
	}
	if c.src.BlockAfter > 0 && c.pos >= c.src.BlockAfter {
		<-ctx.Done()
		return people.Person{}, fmt.Errorf("next: %w: %w", perrors.ErrCancelled, ctx.Err())
	}
	if c.pos >= len(c.src.People) {
		return people.Person{}, io.EOF
	}
	p := c.src.People[c.pos]
	c.pos++
	if c.src.Delivered != nil {
		select {
		case c.src.Delivered <- p:
		default:
		}
	}
	return p, nil
}

func (c *fakeCursor) Close() error {
	c.once.Do(func() { c.src.Closes.Add(1) })
	return nil
}

// Sequence returns n people with ids 1..n.
func Sequence(n int) []people.Person {
	out := make([]people.Person, n)
	for i := range out {
		out[i] = people.Person{ID: i + 1, Name: fmt.Sprintf("Person %d", i+1)}
	}
	return out
}

// ExamplePeople is the documented end-to-end example for pattern "AB".
func ExamplePeople() []people.Person {
	return []people.Person{{ID: 3, Name: "AB"}, {ID: 7, Name: "CAB"}, {ID: 10, Name: "ABX"}}
}

// ExampleNDJSON is the body every streaming endpoint emits for ExamplePeople.
const ExampleNDJSON = "{\"id\":3,\"name\":\"AB\"}\n{\"id\":7,\"name\":\"CAB\"}\n{\"id\":10,\"name\":\"ABX\"}\n"

// ExampleArray is the body of the array endpoint for ExamplePeople.
const ExampleArray = `[{"id":3,"name":"AB"},{"id":7,"name":"CAB"},{"id":10,"name":"ABX"}]`
