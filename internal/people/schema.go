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

package people

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema returns the JSON Schema every NDJSON line (and every array element)
// conforms to.
func Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "Person",
		Description: "One line of an application/x-ndjson people stream.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"id":   {Type: "integer"},
			"name": {Type: "string"},
		},
		Required: []string{"id", "name"},
	}
}

// Validator checks decoded lines against Schema.
type Validator struct {
	resolved *jsonschema.Resolved
}

// NewValidator resolves Schema once so it can be reused for every line of a stream.
func NewValidator() (*Validator, error) {
	resolved, err := Schema().Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, fmt.Errorf("resolve person schema: %w", err)
	}
	return &Validator{resolved: resolved}, nil
}

// ValidateLine validates one raw NDJSON line.
func (v *Validator) ValidateLine(line []byte) error {
	var instance map[string]any
	if err := json.Unmarshal(line, &instance); err != nil {
		return fmt.Errorf("line is not a JSON object: %w", err)
	}
	if err := v.resolved.Validate(instance); err != nil {
		return fmt.Errorf("line does not match person schema: %w", err)
	}
	return nil
}
