// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/seedvm/pubkey"
)

// Account is the persistent record behind a ledger key: a native balance,
// fixed-size byte storage, and the program that exclusively owns the storage.
// A key with no record behaves as a zero Account owned by the system program
// (the zero pubkey).
type Account struct {
	Lamports uint64
	Data     []byte
	Owner    pubkey.Pubkey
}

// Clone returns a deep copy. Execution frames operate on clones so a failed
// instruction leaves the backing store untouched.
func (a *Account) Clone() *Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{
		Lamports: a.Lamports,
		Data:     data,
		Owner:    a.Owner,
	}
}

// IsZero reports whether the account is indistinguishable from an absent one.
func (a *Account) IsZero() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner == pubkey.EmptyPubkey
}

// AccountInfo is one position of an instruction's account list: the shared
// working copy plus this instruction's privileges for it. Signer status is
// established by the VM (transaction signature or derived-address proof on
// invoke), never by the program.
type AccountInfo struct {
	key      pubkey.Pubkey
	acct     *Account
	signer   bool
	writable bool
}

// NewAccountInfo wraps [acct] with explicit privileges. The VM builds these
// itself during execution; tests and tooling build them directly to reuse
// program-side record decoders.
func NewAccountInfo(key pubkey.Pubkey, acct *Account, signer bool, writable bool) *AccountInfo {
	return &AccountInfo{key: key, acct: acct, signer: signer, writable: writable}
}

func (a *AccountInfo) Key() pubkey.Pubkey { return a.key }

func (a *AccountInfo) IsSigner() bool { return a.signer }

func (a *AccountInfo) IsWritable() bool { return a.writable }

func (a *AccountInfo) Owner() pubkey.Pubkey { return a.acct.Owner }

// OwnedBy reports whether the account's storage is owned by [program].
func (a *AccountInfo) OwnedBy(program pubkey.Pubkey) bool {
	return a.acct.Owner == program
}

func (a *AccountInfo) Lamports() uint64 { return a.acct.Lamports }

func (a *AccountInfo) SetLamports(v uint64) error {
	if !a.writable {
		return ErrAccountNotWritable
	}
	a.acct.Lamports = v
	return nil
}

// Data returns the account's raw storage. The slice aliases the working
// copy; callers must treat it as read-only and mutate through WriteData.
func (a *AccountInfo) Data() []byte { return a.acct.Data }

// WriteData replaces the storage contents. The allocation size is fixed at
// creation, so the replacement must match the allocated length exactly.
func (a *AccountInfo) WriteData(b []byte) error {
	if !a.writable {
		return ErrAccountNotWritable
	}
	if len(b) != len(a.acct.Data) {
		return ErrInvalidAccountData
	}
	copy(a.acct.Data, b)
	return nil
}

// Allocate sizes the account's storage and Assign hands ownership to a
// program. Only the account-creation service calls these; it enforces the
// fresh-account preconditions before doing so.
func (a *AccountInfo) Allocate(space uint64) error {
	if !a.writable {
		return ErrAccountNotWritable
	}
	a.acct.Data = make([]byte, space)
	return nil
}

func (a *AccountInfo) Assign(program pubkey.Pubkey) error {
	if !a.writable {
		return ErrAccountNotWritable
	}
	a.acct.Owner = program
	return nil
}
