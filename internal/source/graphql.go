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
	"net/http"
	"sync"
	"time"

	"github.com/shurcooL/graphql"

	"github.com/sirseerhq/peoplestream/internal/people"
)

const defaultGraphQLPageSize = 50

// GraphQLOptions configures a GraphQLSource.
type GraphQLOptions struct {
	// Endpoint is the GraphQL URL of the people directory.
	Endpoint string

	// Token is sent as a bearer token when not empty.
	Token string

	// PageSize is the number of people requested per page. Defaults to 50.
	PageSize int

	// UserAgent identifies this client to the directory.
	UserAgent string

	// Transport overrides the base HTTP transport, mainly for tests.
	Transport http.RoundTripper

	// InitialBackoff is the first retry delay for transient failures. Defaults to 1s.
	InitialBackoff time.Duration
}

// GraphQLSource pages through a remote people directory exposing
//
//	people(filter: String!, first: Int!, after: String): PersonConnection!
//
// Pages are fetched lazily, one at a time, so read-ahead is bounded by PageSize.
type GraphQLSource struct {
	client   *graphql.Client
	pageSize int
}

// NewGraphQLSource creates a source for opts.Endpoint. The HTTP client adds
// authentication and retries transient failures with exponential backoff.
func NewGraphQLSource(opts GraphQLOptions) *GraphQLSource {
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultGraphQLPageSize
	}

	httpClient := &http.Client{
		Transport: newRetryTransport(&authTransport{
			token:     opts.Token,
			userAgent: opts.UserAgent,
			base:      base,
		}, opts.InitialBackoff),
	}

	return &GraphQLSource{
		client:   graphql.NewClient(opts.Endpoint, httpClient),
		pageSize: pageSize,
	}
}

// Open returns a cursor; the first page is requested by the first Next call.
func (s *GraphQLSource) Open(ctx context.Context, pattern string) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(ctx, "open graphql cursor", err)
	}
	return &pageCursor{src: s, pattern: pattern, hasNext: true}, nil
}

type personPage struct {
	people    []people.Person
	hasNext   bool
	endCursor string
}

func (s *GraphQLSource) fetchPage(ctx context.Context, pattern, after string) (*personPage, error) {
	var query struct {
		People struct {
			PageInfo struct {
				HasNextPage graphql.Boolean
				EndCursor   *graphql.String
			}
			Nodes []struct {
				ID   graphql.Int     `graphql:"id"`
				Name *graphql.String `graphql:"name"`
			}
		} `graphql:"people(filter: $filter, first: $first, after: $after)"`
	}

	variables := map[string]interface{}{
		"filter": graphql.String(pattern),
		"first":  graphql.Int(s.pageSize),
		"after":  (*graphql.String)(nil),
	}
	if after != "" {
		variables["after"] = graphql.NewString(graphql.String(after))
	}

	if err := s.client.Query(ctx, &query, variables); err != nil {
		return nil, classify(ctx, "fetch people page", err)
	}

	page := &personPage{
		people:  make([]people.Person, 0, len(query.People.Nodes)),
		hasNext: bool(query.People.PageInfo.HasNextPage),
	}
	if query.People.PageInfo.EndCursor != nil {
		page.endCursor = string(*query.People.PageInfo.EndCursor)
	}
	for _, node := range query.People.Nodes {
		p := people.Person{ID: int(node.ID)}
		if node.Name != nil {
			p.Name = string(*node.Name)
		}
		page.people = append(page.people, p)
	}
	return page, nil
}

type pageCursor struct {
	src     *GraphQLSource
	pattern string
	page    []people.Person
	pos     int
	hasNext bool
	after   string
	once    sync.Once
	closed  bool
}

func (c *pageCursor) Next(ctx context.Context) (people.Person, error) {
	if c.closed {
		return people.Person{}, ErrCursorClosed
	}
	for c.pos >= len(c.page) {
		if !c.hasNext {
			return people.Person{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return people.Person{}, classify(ctx, "next person", err)
		}
		page, err := c.src.fetchPage(ctx, c.pattern, c.after)
		if err != nil {
			return people.Person{}, err
		}
		if page.hasNext && page.endCursor == "" {
			return people.Person{}, classify(ctx, "fetch people page",
				fmt.Errorf("directory reported more pages without an end cursor"))
		}
		c.page, c.pos = page.people, 0
		c.hasNext, c.after = page.hasNext, page.endCursor
	}

	p := c.page[c.pos]
	c.pos++
	return p, nil
}

func (c *pageCursor) Close() error {
	c.once.Do(func() {
		c.closed = true
		c.page = nil
	})
	return nil
}
