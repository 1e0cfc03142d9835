// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/crypto/ed25519"
	"github.com/ava-labs/seedvm/pubkey"
)

// AccountMeta declares one position of an instruction's account list.
// Accounts are supplied by position, not name.
type AccountMeta struct {
	Pubkey     pubkey.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is one program invocation: the target program, an ordered
// account list, and an opaque payload whose first byte is the instruction
// discriminator.
type Instruction struct {
	ProgramID pubkey.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is an ordered instruction list plus the signature set that
// authorizes it. All instructions commit together or not at all.
type Transaction struct {
	Instructions []Instruction

	signatures map[pubkey.Pubkey]ed25519.Signature
}

func NewTransaction(instructions ...Instruction) *Transaction {
	return &Transaction{
		Instructions: instructions,
		signatures:   make(map[pubkey.Pubkey]ed25519.Signature),
	}
}

// Message returns the canonical byte serialization signed by every signer.
func (t *Transaction) Message() []byte {
	size := consts.Uint32Len
	for _, instr := range t.Instructions {
		size += pubkey.PubkeyLen + 2*consts.Uint32Len
		size += len(instr.Accounts) * (pubkey.PubkeyLen + consts.ByteLen)
		size += len(instr.Data)
	}
	p := codec.NewWriter(size)
	p.PackUint32(uint32(len(t.Instructions)))
	for _, instr := range t.Instructions {
		p.PackPubkey(instr.ProgramID)
		p.PackUint32(uint32(len(instr.Accounts)))
		for _, meta := range instr.Accounts {
			p.PackPubkey(meta.Pubkey)
			var flags byte
			if meta.IsSigner {
				flags |= 0x1
			}
			if meta.IsWritable {
				flags |= 0x2
			}
			p.PackByte(flags)
		}
		p.PackUint32(uint32(len(instr.Data)))
		p.PackFixedBytes(instr.Data)
	}
	return p.Bytes()
}

// Sign adds [priv]'s signature over the transaction message.
func (t *Transaction) Sign(priv ed25519.PrivateKey) {
	t.signatures[pubkey.FromPublicKey(priv.PublicKey())] = ed25519.Sign(t.Message(), priv)
}

// SignedBy reports whether [pk] supplied a valid signature over the message.
func (t *Transaction) SignedBy(pk pubkey.Pubkey) bool {
	sig, ok := t.signatures[pk]
	if !ok {
		return false
	}
	return ed25519.Verify(t.Message(), pk.PublicKey(), sig)
}
