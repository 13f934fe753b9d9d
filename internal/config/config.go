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
	"fmt"

	"github.com/spf13/pflag"
)

// Config is the fully validated configuration for one run (spec §6).
type Config struct {
	UploadPair    UploadPair
	Host          string
	Port          uint16
	Username      string
	Auth          AuthMethod
	Connections   uint8
	Filter        FilterSpec
	UploadInitial bool
	StatusPort    uint16
}

// Parse reads args (excluding the program name) into a Config,
// validating the auth-method exclusivity and upload-pair syntax
// described in spec §6. Parse errors are configuration errors: fatal,
// reported before any network activity.
func Parse(progName string, args []string) (Config, error) {
	fs := pflag.NewFlagSet(progName, pflag.ContinueOnError)

	uploadPairFlag := fs.StringP("upload-pair", "u", "", "An upload-pair in the format of <source>[:target]")
	host := fs.StringP("host", "H", "", "The sftp host to connect to")
	port := fs.Uint16P("port", "P", 22, "The sftp port to connect to")
	username := fs.StringP("username", "U", "", "The sftp username to use for the connection")
	pubkey := fs.StringP("pubkey", "k", "", "Path to the public key file")
	privkey := fs.StringP("privkey", "K", "", "Path to the private key file")
	passphrase := fs.StringP("passphrase", "S", "", "Passphrase for the private key")
	password := fs.StringP("password", "W", "", "The sftp password to use for the connection")
	connections := fs.Uint8P("connections", "c", 6, "Number of SFTP sessions in the pool")
	ignoreIncludes := fs.StringArrayP("ignore-path-includes", "i", nil, "Drop paths containing this substring (repeatable)")
	ignoreEnds := fs.StringArrayP("ignore-path-ends", "e", nil, "Drop paths ending with this substring (repeatable)")
	uploadInitial := fs.BoolP("upload-initial", "I", false, "Upload all files from source before starting the watcher")
	statusPort := fs.Uint16P("status-port", "s", 0, "Serve a local read-only status/browse API on this port (0 disables it)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *uploadPairFlag == "" {
		return Config{}, fmt.Errorf("--upload-pair is required")
	}
	if *host == "" {
		return Config{}, fmt.Errorf("--host is required")
	}
	if *username == "" {
		return Config{}, fmt.Errorf("--username is required")
	}
	if *connections < 1 {
		return Config{}, fmt.Errorf("--connections must be >= 1")
	}

	pair, err := ParseUploadPair(*uploadPairFlag)
	if err != nil {
		return Config{}, err
	}

	auth, err := ResolveAuthMethod(*password, *pubkey, *privkey, *passphrase)
	if err != nil {
		return Config{}, err
	}

	return Config{
		UploadPair:    pair,
		Host:          *host,
		Port:          *port,
		Username:      *username,
		Auth:          auth,
		Connections:   *connections,
		Filter:        FilterSpec{IgnoreIncludes: *ignoreIncludes, IgnoreEnds: *ignoreEnds},
		UploadInitial: *uploadInitial,
		StatusPort:    *statusPort,
	}, nil
}
