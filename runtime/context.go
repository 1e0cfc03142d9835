// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/pubkey"
)

// Context carries one instruction invocation to a program: the executing
// program's identity, the positional account list, the raw payload, and the
// host hooks (rent oracle, logging, cross-program invocation).
type Context struct {
	program  pubkey.Pubkey
	accounts []*AccountInfo
	data     []byte
	cursor   int

	frame *frame
	depth int
}

func (c *Context) ProgramID() pubkey.Pubkey { return c.program }

// Data returns the instruction payload, discriminator byte included.
func (c *Context) Data() []byte { return c.data }

// NextAccount returns the next positional account. Trailing accounts a
// program never asks for are permitted.
func (c *Context) NextAccount() (*AccountInfo, error) {
	if c.cursor >= len(c.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	info := c.accounts[c.cursor]
	c.cursor++
	return info, nil
}

// Accounts returns the full account list, which must hold exactly [n]
// entries.
func (c *Context) Accounts(n int) ([]*AccountInfo, error) {
	if len(c.accounts) != n {
		return nil, ErrNotEnoughAccountKeys
	}
	return c.accounts, nil
}

func (c *Context) Rent() Rent { return c.frame.vm.rent }

func (c *Context) Log() *zap.Logger { return c.frame.vm.log }

// Invoke executes [instr] against the accounts of the current transaction.
// Privileges may only narrow: the callee sees an account as signer or
// writable only if the caller's instruction already did.
func (c *Context) Invoke(ctx context.Context, instr Instruction) error {
	return c.frame.invoke(ctx, c, instr, nil)
}

// InvokeSigned is Invoke with derived-address authority: each seed set that
// derives, under the calling program, the address of a referenced account
// confers signer status on that account for the inner instruction. This is
// the signature-equivalent proof for addresses that have no private key.
func (c *Context) InvokeSigned(ctx context.Context, instr Instruction, seedSets ...[][]byte) error {
	return c.frame.invoke(ctx, c, instr, seedSets)
}
