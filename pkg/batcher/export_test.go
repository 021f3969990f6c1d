// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package batcher

// DropState clears the kernel state the way Close does, leaving the closed
// flag unset.
func DropState(h *Hasher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = nil
}
