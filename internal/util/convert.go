// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strconv"

// IntToString converts an integer to its decimal string form.
func IntToString(i int) string {
	return strconv.Itoa(i)
}

// Int64ToString converts a 64-bit integer to its decimal string form.
func Int64ToString(i int64) string {
	return strconv.FormatInt(i, 10)
}
