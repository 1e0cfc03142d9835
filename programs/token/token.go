// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements the custody service holding and transferring
// token balances. The escrow program never touches these records directly;
// it issues transfer requests, authorized either by an owner's signature or
// by a derived address proven through invocation seeds.
package token

import (
	"context"

	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// ID is the canonical identity of the token program.
var ID = pubkey.MustParse("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

const (
	initializeAccountID uint8 = 0
	transferID          uint8 = 1
)

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
	case initializeAccountID:
		return p.initializeAccount(ictx, data[1:])
	case transferID:
		return p.transfer(ictx, data[1:])
	default:
		return runtime.ErrInvalidInstructionData
	}
}

// initializeAccount stamps an allocated, program-owned account as a zero
// balance for the given mint and owner.
func (p *Program) initializeAccount(ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(3)
	if err != nil {
		return err
	}
	acctInfo, mint, owner := accounts[0], accounts[1], accounts[2]

	if len(payload) != 0 {
		return runtime.ErrInvalidInstructionData
	}
	if !acctInfo.OwnedBy(p.id) {
		return runtime.ErrIllegalOwner
	}
	data := acctInfo.Data()
	if len(data) != AccountLen {
		return runtime.ErrInvalidAccountData
	}
	// The state byte is last in the record layout.
	if data[AccountLen-1] != StateUninitialized {
		return runtime.ErrAccountAlreadyInUse
	}
	return setAccount(acctInfo, &Account{
		Mint:  mint.Key(),
		Owner: owner.Key(),
		State: StateInitialized,
	})
}

// transfer moves [amount] between token accounts. The debit side's owner
// must authorize: either a transaction signature or, for derived owners, a
// seed proof supplied by the invoking program.
func (p *Program) transfer(ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(3)
	if err != nil {
		return err
	}
	fromInfo, toInfo, authority := accounts[0], accounts[1], accounts[2]

	r := codec.NewReader(payload)
	amount := r.UnpackUint64()
	if err := r.Done(); err != nil {
		return runtime.ErrInvalidInstructionData
	}

	from, err := GetAccount(fromInfo)
	if err != nil {
		return err
	}
	if !authority.IsSigner() {
		return runtime.ErrMissingRequiredSignature
	}
	if from.Owner != authority.Key() {
		return runtime.ErrIllegalOwner
	}
	if from.Amount < amount {
		return runtime.ErrInsufficientFunds
	}
	// A self-transfer passes every check above but moves nothing. Writing
	// both sides back would apply the stale credited copy last, so it
	// must not reach the debit/credit path.
	if fromInfo.Key() == toInfo.Key() {
		return nil
	}
	to, err := GetAccount(toInfo)
	if err != nil {
		return err
	}
	if to.Amount > consts.MaxUint64-amount {
		return ErrAmountOverflow
	}

	from.Amount -= amount
	to.Amount += amount
	if err := setAccount(fromInfo, from); err != nil {
		return err
	}
	return setAccount(toInfo, to)
}

// NewInitializeAccountInstruction builds the initialize(account, mint,
// owner) request.
func NewInitializeAccountInstruction(
	programID pubkey.Pubkey,
	account pubkey.Pubkey,
	mint pubkey.Pubkey,
	owner pubkey.Pubkey,
) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: mint},
			{Pubkey: owner},
		},
		Data: []byte{initializeAccountID},
	}
}

// NewTransferInstruction builds the transfer(from, to, authority, amount)
// request.
func NewTransferInstruction(
	programID pubkey.Pubkey,
	from pubkey.Pubkey,
	to pubkey.Pubkey,
	authority pubkey.Pubkey,
	amount uint64,
) runtime.Instruction {
	p := codec.NewWriter(consts.ByteLen + consts.Uint64Len)
	p.PackByte(transferID)
	p.PackUint64(amount)
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: from, IsWritable: true},
			{Pubkey: to, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
		},
		Data: p.Bytes(),
	}
}
