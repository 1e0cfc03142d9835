// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// Instruction discriminators. IDs are assigned explicitly; the dispatcher
// rejects anything outside this closed set.
const (
	CreateID    uint8 = 0
	IncrementID uint8 = 1
	DecrementID uint8 = 2
	DeleteID    uint8 = 3
)

// InstructionData is the fixed one-byte payload shared by every counter
// instruction. The bump participates in the address re-derivation performed
// on every call, which is the account-identity check itself.
type InstructionData struct {
	Bump uint8
}

func unmarshalInstructionData(payload []byte) (InstructionData, error) {
	r := codec.NewReader(payload)
	data := InstructionData{Bump: r.UnpackByte()}
	if err := r.Done(); err != nil {
		return InstructionData{}, runtime.ErrInvalidInstructionData
	}
	return data, nil
}

// NewInstruction builds a counter instruction of kind [id]. Every kind uses
// the same account list: owner (signer, writable), counter record
// (writable), account-creation service (readonly reference).
func NewInstruction(
	programID pubkey.Pubkey,
	id uint8,
	owner pubkey.Pubkey,
	counter pubkey.Pubkey,
	systemProgram pubkey.Pubkey,
	bump uint8,
) runtime.Instruction {
	p := codec.NewWriter(2 * consts.ByteLen)
	p.PackByte(id)
	p.PackByte(bump)
	return runtime.Instruction{
		ProgramID: programID,
		Accounts: []runtime.AccountMeta{
			{Pubkey: owner, IsSigner: true, IsWritable: true},
			{Pubkey: counter, IsWritable: true},
			{Pubkey: systemProgram},
		},
		Data: p.Bytes(),
	}
}
