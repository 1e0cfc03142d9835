// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package system implements the account-creation service. It is the only
// program allowed to size an account's storage and hand its ownership to
// another program, which it does exactly once per account.
package system

import (
	"context"

	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// ID is the canonical identity of the system program (the zero key).
var ID = pubkey.MustParse("11111111111111111111111111111111")

const createAccountID uint8 = 0

var _ runtime.Program = (*Program)(nil)

type Program struct {
	id pubkey.Pubkey
}

func New(id pubkey.Pubkey) *Program {
	return &Program{id: id}
}

func (p *Program) Execute(_ context.Context, ictx *runtime.Context) error {
	data := ictx.Data()
	if len(data) == 0 {
		return runtime.ErrInvalidInstructionData
	}
	switch data[0] {
	case createAccountID:
		return p.createAccount(ictx, data[1:])
	default:
		return runtime.ErrInvalidInstructionData
	}
}

// createAccount allocates a fresh account: [space] zeroed bytes owned by the
// requested program, funded with [lamports] debited from the funding account.
// Both the funding account and the new account must sign; a derived new
// account signs through the creating program's seed proof.
func (p *Program) createAccount(ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(2)
	if err != nil {
		return err
	}
	funding, newAccount := accounts[0], accounts[1]

	r := codec.NewReader(payload)
	lamports := r.UnpackUint64()
	space := r.UnpackUint64()
	var owner pubkey.Pubkey
	r.UnpackPubkey(&owner)
	if err := r.Done(); err != nil {
		return runtime.ErrInvalidInstructionData
	}

	if !funding.IsSigner() {
		return runtime.ErrMissingRequiredSignature
	}
	if !newAccount.IsSigner() {
		return runtime.ErrMissingRequiredSignature
	}
	// The target must have zero allocated storage so it can be shaped fresh.
	if newAccount.Lamports() != 0 || len(newAccount.Data()) != 0 || !newAccount.OwnedBy(p.id) {
		return runtime.ErrAccountAlreadyInUse
	}
	if funding.Lamports() < lamports {
		return runtime.ErrInsufficientFunds
	}

	if err := funding.SetLamports(funding.Lamports() - lamports); err != nil {
		return err
	}
	if err := newAccount.Allocate(space); err != nil {
		return err
	}
	if err := newAccount.SetLamports(lamports); err != nil {
		return err
	}
	return newAccount.Assign(owner)
}

// NewCreateAccountInstruction builds the create(funding, new, lamports,
// space, owner) request.
func NewCreateAccountInstruction(
	programID pubkey.Pubkey,
	funding pubkey.Pubkey,
	newAccount pubkey.Pubkey,
	lamports uint64,
	space uint64,
	owner pubkey.Pubkey,
) runtime.Instruction {
	p := codec.NewWriter(consts.ByteLen + 2*consts.Uint64Len + pubkey.PubkeyLen)
	p.PackByte(createAccountID)
	p.PackUint64(lamports)
	p.PackUint64(space)
	p.PackPubkey(owner)
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: funding, IsSigner: true, IsWritable: true},
			{Pubkey: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: p.Bytes(),
	}
}
