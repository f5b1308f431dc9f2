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

// Package people defines the single record shape served by the streaming API.
package people

// Person is one row of the people directory. It is an immutable value: sources
// create it, the pipeline encodes it once and drops it.
//
// Name is never null on the wire; sources map a missing name to "".
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
