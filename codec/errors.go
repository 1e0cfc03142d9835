// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInsufficientLength = errors.New("insufficient length")
	ErrTrailingBytes      = errors.New("trailing bytes")
)
