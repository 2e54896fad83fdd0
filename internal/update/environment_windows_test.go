//go:build windows

// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import "testing"

// TestSelfUpdateUnsupportedOnWindows ensures the guard remains enforced on Windows,
// where a running binary cannot replace itself.
func TestSelfUpdateUnsupportedOnWindows(t *testing.T) {
	if isSelfUpdateSupportedPlatform() {
		t.Fatal("isSelfUpdateSupportedPlatform() must return false on Windows")
	}
}
