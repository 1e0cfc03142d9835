// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubkey

import "errors"

var (
	ErrInvalidPubkey      = errors.New("invalid pubkey")
	ErrInvalidSeeds       = errors.New("invalid seeds")
	ErrMaxSeedLenExceeded = errors.New("max seed length exceeded")
	ErrTooManySeeds       = errors.New("too many seeds")
	ErrNoViableBump       = errors.New("unable to find viable bump")
)
