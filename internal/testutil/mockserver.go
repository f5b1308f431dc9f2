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

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// GraphQLRequest is the body a GraphQL client posts.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// MockDirectory is a mock people directory speaking GraphQL.
type MockDirectory struct {
	*httptest.Server
	people []people.Person

	// FailFirst makes the first n requests answer 503
	FailFirst int32

	requestCount atomic.Int32
	lastAuth     atomic.Value
	lastRequest  atomic.Value
}

// NewMockDirectory creates a mock GraphQL server serving ps (already in id order).
// Cursors are the index of the next person, as a string.
func NewMockDirectory(t *testing.T, ps []people.Person) *MockDirectory {
	t.Helper()
	d := &MockDirectory{people: ps}
	d.Server = httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(d.Close)
	return d
}

// Requests returns the number of requests served, including failed ones.
func (d *MockDirectory) Requests() int {
	return int(d.requestCount.Load())
}

// LastAuthorization returns the Authorization header of the last request.
func (d *MockDirectory) LastAuthorization() string {
	s, _ := d.lastAuth.Load().(string)
	return s
}

// LastRequest returns the last decoded GraphQL request.
func (d *MockDirectory) LastRequest() GraphQLRequest {
	r, _ := d.lastRequest.Load().(GraphQLRequest)
	return r
}

func (d *MockDirectory) handle(w http.ResponseWriter, r *http.Request) {
	count := d.requestCount.Add(1)
	d.lastAuth.Store(r.Header.Get("Authorization"))

	if count <= d.FailFirst {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(http.StatusText(http.StatusServiceUnavailable)))
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	d.lastRequest.Store(req)

	filter, _ := req.Variables["filter"].(string)
	first := 50
	if f, ok := req.Variables["first"].(float64); ok {
		first = int(f)
	}
	start := 0
	if after, ok := req.Variables["after"].(string); ok && after != "" {
		start, _ = strconv.Atoi(after)
	}

	var (
		nodes = make([]map[string]interface{}, 0, first)
		next  = start
	)
	for ; next < len(d.people) && len(nodes) < first; next++ {
		p := d.people[next]
		if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter)) {
			continue
		}
		node := map[string]interface{}{"id": p.ID, "name": p.Name}
		if p.Name == "" {
			node["name"] = nil
		}
		nodes = append(nodes, node)
	}

	hasMore := next < len(d.people)
	var cursor *string
	if hasMore {
		c := strconv.Itoa(next)
		cursor = &c
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"people": map[string]interface{}{
				"nodes": nodes,
				"pageInfo": map[string]interface{}{
					"hasNextPage": hasMore,
					"endCursor":   cursor,
				},
			},
		},
	})
}
