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
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// ParseNDJSON decodes every line of body, failing on blank or invalid lines.
func ParseNDJSON(t *testing.T, body string) []people.Person {
	t.Helper()

	var out []people.Person
	scanner := bufio.NewScanner(strings.NewReader(body))
	line := 0
	for scanner.Scan() {
		line++
		var p people.Person
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			t.Fatalf("Line %d: invalid JSON %q: %v", line, scanner.Text(), err)
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading body: %v", err)
	}
	if body != "" && !strings.HasSuffix(body, "\n") {
		t.Errorf("Body does not end with a line terminator: %q", body)
	}
	return out
}

// AssertPeople compares two people sequences element by element.
func AssertPeople(t *testing.T, got, want []people.Person) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Got %d people, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Person %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}
