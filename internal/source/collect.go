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
	"io"

	"github.com/sirseerhq/peoplestream/internal/people"
)

// Collect materializes every person matching pattern. The result has no size
// bound; it exists for the array endpoint and for tests.
func Collect(ctx context.Context, src Source, pattern string) ([]people.Person, error) {
	cur, err := src.Open(ctx, pattern)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	out := make([]people.Person, 0, 1024)
	for {
		p, err := cur.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
