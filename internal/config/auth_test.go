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

import (
	"errors"
	"testing"

	"devsync/internal/core"
)

func TestResolveAuthMethod(t *testing.T) {
	t.Run("password", func(t *testing.T) {
		auth, err := ResolveAuthMethod("secret", "", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth.Kind != AuthPassword || auth.Password != "secret" {
			t.Fatalf("unexpected auth method: %+v", auth)
		}
	})

	t.Run("pubkey", func(t *testing.T) {
		auth, err := ResolveAuthMethod("", "id.pub", "id_rsa", "phrase")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth.Kind != AuthPubkey || auth.PubkeyPath != "id.pub" || auth.PrivkeyPath != "id_rsa" || auth.Passphrase != "phrase" {
			t.Fatalf("unexpected auth method: %+v", auth)
		}
	})

	t.Run("none provided", func(t *testing.T) {
		_, err := ResolveAuthMethod("", "", "", "")
		if !errors.Is(err, core.ErrNoAuthMethod) {
			t.Fatalf("expected ErrNoAuthMethod, got %v", err)
		}
	})

	t.Run("conflicting", func(t *testing.T) {
		_, err := ResolveAuthMethod("secret", "id.pub", "id_rsa", "")
		if !errors.Is(err, core.ErrConflictingAuth) {
			t.Fatalf("expected ErrConflictingAuth, got %v", err)
		}
	})

	t.Run("pubkey without privkey", func(t *testing.T) {
		_, err := ResolveAuthMethod("", "id.pub", "", "")
		if !errors.Is(err, core.ErrNoAuthMethod) {
			t.Fatalf("expected ErrNoAuthMethod, got %v", err)
		}
	})
}
