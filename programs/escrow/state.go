// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package escrow

import (
	"github.com/near/borsh-go"

	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// Seed is the domain tag of escrow account derivations.
const Seed = "escrow"

// StateLen is the exact storage size of an escrow record:
// sender (32) | receiver (32) | amount (8, little-endian).
const StateLen = 72

// Escrow is the on-ledger escrow record. Sender and receiver never change
// after creation. Amount is fixed at deposit time and re-read, never
// re-supplied, by the terminal handlers; it is zeroed once the escrow is
// consumed.
type Escrow struct {
	Sender   pubkey.Pubkey
	Receiver pubkey.Pubkey
	Amount   uint64
}

func (e *Escrow) Bytes() ([]byte, error) {
	return borsh.Serialize(*e)
}

// GetEscrow decodes [info]'s storage, which must be exactly StateLen bytes.
func GetEscrow(info *runtime.AccountInfo) (*Escrow, error) {
	data := info.Data()
	if len(data) != StateLen {
		return nil, runtime.ErrInvalidAccountData
	}
	e := &Escrow{}
	if err := borsh.Deserialize(e, data); err != nil {
		return nil, runtime.ErrInvalidAccountData
	}
	return e, nil
}

func setEscrow(info *runtime.AccountInfo, e *Escrow) error {
	b, err := e.Bytes()
	if err != nil {
		return err
	}
	return info.WriteData(b)
}
