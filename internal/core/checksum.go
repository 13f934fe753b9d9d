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

package core

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// CalculateChecksum computes the CRC32 (IEEE) checksum of a local file.
//
// This is not part of the upload path: the system does not
// checksum-verify remote content (see spec Non-goals). It exists so
// tests can assert byte-for-byte equality between a local file and
// what landed on the remote without re-reading both files by hand.
func CalculateChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum32()), nil
}

// ChecksumReader computes a checksum from an io.Reader directly, for
// comparing against a remote file already opened for read.
func ChecksumReader(r io.Reader) (string, error) {
	h := crc32.NewIEEE()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum32()), nil
}
