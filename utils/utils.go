// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import "github.com/ava-labs/seedvm/consts"

// SaturateAdd64 returns [a]+[b], clamped to MaxUint64. Saturation (instead of
// an overflow error) is the defined boundary policy for counter arithmetic.
func SaturateAdd64(a uint64, b uint64) uint64 {
	if a > consts.MaxUint64-b {
		return consts.MaxUint64
	}
	return a + b
}

// SaturateSub64 returns [a]-[b], clamped to 0.
func SaturateSub64(a uint64, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
