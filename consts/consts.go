// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	Uint32Len = 4
	Uint64Len = 8

	MaxUint8  = ^uint8(0)
	MaxUint64 = ^uint64(0)
)
