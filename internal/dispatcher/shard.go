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

package dispatcher

import "math"

// SplitToNChunks greedily shards items into exactly n chunks (some may
// be empty once items run out), taking ceil(remaining/remaining_chunks)
// items for each chunk in turn. This spreads an uneven item count as
// evenly as possible across a fixed number of session workers, ported
// from the original Rust implementation's split_to_n_chunks
// (original_source/src/utils/mod.rs).
func SplitToNChunks[T any](items []T, n int) [][]T {
	if n <= 0 {
		panic("n must be greater than 0")
	}

	result := make([][]T, 0, n)
	remaining := items
	for i := n; i > 0; i-- {
		chunkSize := int(math.Ceil(float64(len(remaining)) / float64(i)))
		if chunkSize > len(remaining) {
			chunkSize = len(remaining)
		}
		result = append(result, remaining[:chunkSize])
		remaining = remaining[chunkSize:]
	}
	return result
}
