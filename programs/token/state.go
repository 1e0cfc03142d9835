// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/near/borsh-go"

	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

const (
	// AccountLen is the exact storage size of a token account record:
	// mint (32) | owner (32) | amount (8, little-endian) | state (1).
	AccountLen = 73

	StateUninitialized uint8 = 0
	StateInitialized   uint8 = 1
)

// Account is a token balance held for [Owner]. Field order is the wire
// order; there is no implicit padding.
type Account struct {
	Mint   pubkey.Pubkey
	Owner  pubkey.Pubkey
	Amount uint64
	State  uint8
}

func (a *Account) Bytes() ([]byte, error) {
	return borsh.Serialize(*a)
}

// GetAccount decodes [info]'s storage as an initialized token account. The
// storage must be owned by the token program and be exactly AccountLen
// bytes.
func GetAccount(info *runtime.AccountInfo) (*Account, error) {
	if !info.OwnedBy(ID) {
		return nil, runtime.ErrIllegalOwner
	}
	data := info.Data()
	if len(data) != AccountLen {
		return nil, runtime.ErrInvalidAccountData
	}
	acct := &Account{}
	if err := borsh.Deserialize(acct, data); err != nil {
		return nil, runtime.ErrInvalidAccountData
	}
	if acct.State != StateInitialized {
		return nil, runtime.ErrInvalidAccountData
	}
	return acct, nil
}

// setAccount writes [acct] back into [info]'s storage.
func setAccount(info *runtime.AccountInfo, acct *Account) error {
	b, err := acct.Bytes()
	if err != nil {
		return err
	}
	return info.WriteData(b)
}
