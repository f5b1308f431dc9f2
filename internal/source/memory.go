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
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// Memory serves a fixed data set. Matching is case-insensitive, like the
// default SQLite and SQL Server collations.
type Memory struct {
	people []people.Person
}

// NewMemory creates a Memory source over a copy of ps sorted by id.
func NewMemory(ps []people.Person) *Memory {
	sorted := make([]people.Person, len(ps))
	copy(sorted, ps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Memory{people: sorted}
}

// Open returns a cursor over the matching people.
func (m *Memory) Open(ctx context.Context, pattern string) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(ctx, "open memory cursor", err)
	}
	return &memoryCursor{people: m.people, pattern: strings.ToLower(pattern)}, nil
}

type memoryCursor struct {
	people  []people.Person
	pattern string
	pos     int
	once    sync.Once
	closed  bool
}

func (c *memoryCursor) Next(ctx context.Context) (people.Person, error) {
	if c.closed {
		return people.Person{}, ErrCursorClosed
	}
	for c.pos < len(c.people) {
		if err := ctx.Err(); err != nil {
			return people.Person{}, classify(ctx, "next person", err)
		}
		p := c.people[c.pos]
		c.pos++
		if strings.Contains(strings.ToLower(p.Name), c.pattern) {
			return p, nil
		}
	}
	return people.Person{}, io.EOF
}

func (c *memoryCursor) Close() error {
	c.once.Do(func() { c.closed = true })
	return nil
}

var (
	demoFirst = []string{"Adam", "Barbora", "Cyril", "Dana", "Emil", "Fabian", "Gabriela", "Hana", "Igor", "Jana", "Karel", "Lucie"}
	demoLast  = []string{"Novák", "Svoboda", "Dvořák", "Černá", "Procházka", "Kučera", "Veselý", "Horák", "Abel", "Pokorný"}
)

// DemoPeople generates n people with deterministic names, ids 1..n.
func DemoPeople(n int) []people.Person {
	out := make([]people.Person, 0, n)
	for i := 0; i < n; i++ {
		first := demoFirst[i%len(demoFirst)]
		last := demoLast[(i/len(demoFirst))%len(demoLast)]
		out = append(out, people.Person{ID: i + 1, Name: fmt.Sprintf("%s %s", first, last)})
	}
	return out
}
