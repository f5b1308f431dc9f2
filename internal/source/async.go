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
	"sync"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// Async wraps src so that fetching runs in a producer goroutine that hands records
// over an unbuffered channel. The producer fetches at most one record ahead of the
// consumer and observes the same context, so a stalled consumer stalls the fetch.
func Async(src Source) Source {
	return asyncSource{src: src}
}

type asyncSource struct {
	src Source
}

type item struct {
	person people.Person
	err    error
}

// Open starts the producer. Errors from the wrapped Open surface on the first Next.
func (a asyncSource) Open(ctx context.Context, pattern string) (Cursor, error) {
	pctx, cancel := context.WithCancel(ctx)
	c := &asyncCursor{
		items:  make(chan item),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go c.produce(pctx, a.src, pattern)
	return c, nil
}

type asyncCursor struct {
	items  chan item
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	err    error // terminal error, returned again on later calls
}

func (c *asyncCursor) produce(ctx context.Context, src Source, pattern string) {
	defer close(c.done)

	cur, err := src.Open(ctx, pattern)
	if err != nil {
		c.send(ctx, item{err: err})
		return
	}
	defer cur.Close()

	for {
		p, err := cur.Next(ctx)
		if !c.send(ctx, item{person: p, err: err}) || err != nil {
			return
		}
	}
}

func (c *asyncCursor) send(ctx context.Context, it item) bool {
	select {
	case c.items <- it:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *asyncCursor) Next(ctx context.Context) (people.Person, error) {
	if c.err != nil {
		return people.Person{}, c.err
	}
	if err := ctx.Err(); err != nil {
		c.err = classify(ctx, "next person", err)
		return people.Person{}, c.err
	}

	select {
	case it := <-c.items:
		if it.err != nil {
			c.err = it.err
		}
		return it.person, it.err
	case <-c.done:
		// The producer only exits without sending once its context has ended.
		if err := ctx.Err(); err != nil {
			c.err = classify(ctx, "next person", err)
		} else {
			c.err = ErrCursorClosed
		}
		return people.Person{}, c.err
	case <-ctx.Done():
		c.err = classify(ctx, "next person", ctx.Err())
		return people.Person{}, c.err
	}
}

// Close stops the producer and waits until it has released the wrapped cursor.
func (c *asyncCursor) Close() error {
	c.once.Do(func() {
		c.cancel()
		<-c.done
		if c.err == nil {
			c.err = ErrCursorClosed
		}
	})
	return nil
}
