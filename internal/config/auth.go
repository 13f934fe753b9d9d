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

import "devsync/internal/core"

// AuthKind distinguishes the two supported SFTP auth variants.
type AuthKind int

const (
	AuthPassword AuthKind = iota
	AuthPubkey
)

// AuthMethod carries exactly one resolved authentication variant:
// password, or public-key + private-key + optional passphrase
// (spec §6). Exactly one must resolve; violations are configuration
// errors and are reported before any network activity.
type AuthMethod struct {
	Kind        AuthKind
	Password    string
	PubkeyPath  string
	PrivkeyPath string
	Passphrase  string
}

// ResolveAuthMethod picks exactly one auth variant out of the raw CLI
// inputs, or returns a configuration error.
func ResolveAuthMethod(password, pubkeyPath, privkeyPath, passphrase string) (AuthMethod, error) {
	hasPassword := password != ""
	hasPubkey := pubkeyPath != ""
	hasPrivkey := privkeyPath != ""

	if hasPassword && (hasPubkey || hasPrivkey) {
		return AuthMethod{}, core.ErrConflictingAuth
	}

	if hasPassword {
		return AuthMethod{Kind: AuthPassword, Password: password}, nil
	}

	if hasPubkey && hasPrivkey {
		return AuthMethod{
			Kind:        AuthPubkey,
			PubkeyPath:  pubkeyPath,
			PrivkeyPath: privkeyPath,
			Passphrase:  passphrase,
		}, nil
	}

	return AuthMethod{}, core.ErrNoAuthMethod
}
