// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon

import (
	"fmt"
	"strings"
)

// Strength selects the round parameterization of the permutation.
type Strength int

const (
	// Standard uses the partial round counts of the security analysis.
	Standard Strength = iota
	// Strengthened adds 25% partial rounds on top of Standard.
	Strengthened
)

// DefaultStrength is used when no strength is configured.
const DefaultStrength = Standard

func (s Strength) String() string {
	switch s {
	case Standard:
		return "standard"
	case Strengthened:
		return "strengthened"
	}
	return fmt.Sprintf("strength(%d)", int(s))
}

// ParseStrength returns the strength named by s.
func ParseStrength(s string) (Strength, error) {
	switch strings.ToLower(s) {
	case "", "standard":
		return Standard, nil
	case "strengthened":
		return Strengthened, nil
	}
	return 0, fmt.Errorf("unknown hash strength %q", s)
}
