// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package escrow

import (
	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// Instruction discriminators.
const (
	InitializeID uint8 = 0
	ExchangeID   uint8 = 1
	CancelID     uint8 = 2
)

// InitializeData is Initialize's payload: amount (8) | bump (1) |
// padding (7). The padding bytes exist on the wire and must be present.
type InitializeData struct {
	Amount uint64
	Bump   uint8
}

const initializePaddingLen = 7

func unmarshalInitializeData(payload []byte) (InitializeData, error) {
	r := codec.NewReader(payload)
	data := InitializeData{
		Amount: r.UnpackUint64(),
		Bump:   r.UnpackByte(),
	}
	var padding [initializePaddingLen]byte
	r.UnpackFixedBytes(padding[:])
	if err := r.Done(); err != nil {
		return InitializeData{}, runtime.ErrInvalidInstructionData
	}
	return data, nil
}

// FinalizeData is the payload shared by Exchange and Cancel: bump (1).
type FinalizeData struct {
	Bump uint8
}

func unmarshalFinalizeData(payload []byte) (FinalizeData, error) {
	r := codec.NewReader(payload)
	data := FinalizeData{Bump: r.UnpackByte()}
	if err := r.Done(); err != nil {
		return FinalizeData{}, runtime.ErrInvalidInstructionData
	}
	return data, nil
}

// NewInitializeInstruction builds the deposit request. The escrow record and
// escrow token accounts are derived/held accounts: they are writable but
// never transaction-level signers, acquiring authority through seed proofs
// instead.
func NewInitializeInstruction(
	programID pubkey.Pubkey,
	amount uint64,
	sender pubkey.Pubkey,
	senderTokenAccount pubkey.Pubkey,
	receiver pubkey.Pubkey,
	escrowKey pubkey.Pubkey,
	escrowTokenAccount pubkey.Pubkey,
	systemProgram pubkey.Pubkey,
	tokenProgram pubkey.Pubkey,
	bump uint8,
) runtime.Instruction {
	p := codec.NewWriter(consts.ByteLen + consts.Uint64Len + consts.ByteLen + initializePaddingLen)
	p.PackByte(InitializeID)
	p.PackUint64(amount)
	p.PackByte(bump)
	p.PackFixedBytes(make([]byte, initializePaddingLen))
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: sender, IsSigner: true, IsWritable: true},
			{Pubkey: senderTokenAccount, IsWritable: true},
			{Pubkey: receiver},
			{Pubkey: escrowKey, IsWritable: true},
			{Pubkey: escrowTokenAccount, IsWritable: true},
			{Pubkey: systemProgram},
			{Pubkey: tokenProgram},
		},
		Data: p.Bytes(),
	}
}

// NewExchangeInstruction builds the payout request.
func NewExchangeInstruction(
	programID pubkey.Pubkey,
	sender pubkey.Pubkey,
	receiver pubkey.Pubkey,
	receiverTokenAccount pubkey.Pubkey,
	escrowKey pubkey.Pubkey,
	escrowTokenAccount pubkey.Pubkey,
	systemProgram pubkey.Pubkey,
	tokenProgram pubkey.Pubkey,
	bump uint8,
) runtime.Instruction {
	p := codec.NewWriter(2 * consts.ByteLen)
	p.PackByte(ExchangeID)
	p.PackByte(bump)
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: sender},
			{Pubkey: receiver, IsSigner: true, IsWritable: true},
			{Pubkey: receiverTokenAccount, IsWritable: true},
			{Pubkey: escrowKey, IsWritable: true},
			{Pubkey: escrowTokenAccount, IsWritable: true},
			{Pubkey: systemProgram},
			{Pubkey: tokenProgram},
		},
		Data: p.Bytes(),
	}
}

// NewCancelInstruction builds the refund request.
func NewCancelInstruction(
	programID pubkey.Pubkey,
	sender pubkey.Pubkey,
	senderTokenAccount pubkey.Pubkey,
	receiver pubkey.Pubkey,
	escrowKey pubkey.Pubkey,
	escrowTokenAccount pubkey.Pubkey,
	systemProgram pubkey.Pubkey,
	tokenProgram pubkey.Pubkey,
	bump uint8,
) runtime.Instruction {
	p := codec.NewWriter(2 * consts.ByteLen)
	p.PackByte(CancelID)
	p.PackByte(bump)
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: sender, IsSigner: true, IsWritable: true},
			{Pubkey: senderTokenAccount, IsWritable: true},
			{Pubkey: receiver},
			{Pubkey: escrowKey, IsWritable: true},
			{Pubkey: escrowTokenAccount, IsWritable: true},
			{Pubkey: systemProgram},
			{Pubkey: tokenProgram},
		},
		Data: p.Bytes(),
	}
}
