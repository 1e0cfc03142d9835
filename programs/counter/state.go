// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"github.com/near/borsh-go"

	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// Seed is the domain tag of counter account derivations.
const Seed = "counter"

// StateLen is the exact storage size of a counter record:
// owner (32) | count (8, little-endian).
const StateLen = 40

// Counter is the on-ledger counter record. Owner is fixed at creation;
// Count saturates at its numeric bounds.
type Counter struct {
	Owner pubkey.Pubkey
	Count uint64
}

func (c *Counter) Bytes() ([]byte, error) {
	return borsh.Serialize(*c)
}

// GetCounter decodes [info]'s storage, which must be exactly StateLen bytes.
func GetCounter(info *runtime.AccountInfo) (*Counter, error) {
	data := info.Data()
	if len(data) != StateLen {
		return nil, runtime.ErrInvalidAccountData
	}
	c := &Counter{}
	if err := borsh.Deserialize(c, data); err != nil {
		return nil, runtime.ErrInvalidAccountData
	}
	return c, nil
}

func setCounter(info *runtime.AccountInfo, c *Counter) error {
	b, err := c.Bytes()
	if err != nil {
		return err
	}
	return info.WriteData(b)
}
