// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"errors"

	"github.com/ava-labs/seedvm/pubkey"
)

// Validation failures abort the whole instruction. Nothing is retried and no
// partial effect survives: the VM discards every buffered mutation on error.
var (
	ErrNotEnoughAccountKeys     = errors.New("not enough account keys")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrIllegalOwner             = errors.New("illegal owner")

	// ErrInvalidSeeds is shared with the derivation package so a failed
	// derivation and a failed identity check surface as the same class.
	ErrInvalidSeeds = pubkey.ErrInvalidSeeds

	ErrInvalidAccountData  = errors.New("invalid account data")
	ErrAccountAlreadyInUse = errors.New("account already in use")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotWritable  = errors.New("account not writable")
	ErrMissingAccount      = errors.New("account missing from transaction")
	ErrUnknownProgram      = errors.New("unknown program")
	ErrDuplicateProgram    = errors.New("program already registered")
	ErrPrivilegeEscalation = errors.New("privilege escalation")
	ErrCallDepthExceeded   = errors.New("call depth exceeded")
)
