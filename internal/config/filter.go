/*
 * Copyright 2026 The FileRipper Team
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import "strings"

// FilterSpec holds the two ordered sequences of substring patterns
// used to drop watcher paths (spec §3). Never mutated after startup.
type FilterSpec struct {
	IgnoreIncludes []string
	IgnoreEnds     []string
}

// Matches reports whether path should be dropped: it contains any
// ignore_includes pattern, or ends with any ignore_ends pattern.
func (f FilterSpec) Matches(path string) bool {
	for _, pattern := range f.IgnoreEnds {
		if strings.HasSuffix(path, pattern) {
			return true
		}
	}
	for _, pattern := range f.IgnoreIncludes {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
