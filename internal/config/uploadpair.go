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

// Package config holds the CLI surface (spec §6) and the validated
// configuration it produces: upload pairs, filter specs and auth
// method selection.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"devsync/internal/core"
)

// UploadPair is a (source, target) pair of filesystem paths. Source is
// a local directory; target is a remote directory interpreted
// relative to the session's initial remote working directory unless
// absolute. Immutable after construction (spec §3).
type UploadPair struct {
	Source string
	Target string
}

// NewUploadPair validates and constructs an UploadPair. If target is
// empty and source is relative, target defaults to source. If source
// is absolute, target must be non-empty.
func NewUploadPair(source, target string) (UploadPair, error) {
	if target == "" {
		if filepath.IsAbs(source) {
			return UploadPair{}, fmt.Errorf("%w: target must be provided when source %q is absolute", core.ErrInvalidUploadPair, source)
		}
		target = source
	}
	return UploadPair{Source: source, Target: target}, nil
}

// ParseUploadPair parses the "<src>[:<dst>]" CLI syntax (spec §6).
// The string is split on ':'; the first two components become source
// and target, whitespace trimmed from each. Any further colons (e.g. a
// Windows drive letter appearing in a later component) are ignored,
// matching the original implementation's behavior.
func ParseUploadPair(raw string) (UploadPair, error) {
	parts := strings.SplitN(raw, ":", 3)

	source := strings.TrimSpace(parts[0])
	var target string
	if len(parts) > 1 {
		target = strings.TrimSpace(parts[1])
	}

	return NewUploadPair(source, target)
}
