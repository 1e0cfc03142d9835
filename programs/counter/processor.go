// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package counter implements a per-owner counter program. Each owner holds
// at most one counter, stored at the address derived from the "counter" tag,
// the owner's key, and a bump byte.
package counter

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/programs/system"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
	"github.com/ava-labs/seedvm/utils"
)

// ID is the canonical identity the program is deployed under.
var ID = pubkey.MustParse("9YxC88EDFbs4a2ypUmKy8HPUFdg1FTnwnZm7358J3w9u")

var _ runtime.Program = (*Program)(nil)

type Program struct {
	id            pubkey.Pubkey
	systemProgram pubkey.Pubkey
}

// New configures the program with its own identity and the account-creation
// service it requests allocations from.
func New(id pubkey.Pubkey, systemProgram pubkey.Pubkey) *Program {
	return &Program{id: id, systemProgram: systemProgram}
}

func (p *Program) Execute(ctx context.Context, ictx *runtime.Context) error {
	// The first account is the owner of the counter. Create sets it as the
	// owner; every other instruction checks it against the stored record.
	owner, err := ictx.NextAccount()
	if err != nil {
		return err
	}
	if !owner.IsSigner() {
		return runtime.ErrMissingRequiredSignature
	}

	// The second account is the counter record.
	counterInfo, err := ictx.NextAccount()
	if err != nil {
		return err
	}

	// The third (and last) account is the account-creation service.
	if _, err := ictx.NextAccount(); err != nil {
		return err
	}

	data := ictx.Data()
	if len(data) == 0 {
		return runtime.ErrInvalidInstructionData
	}
	instruction, err := unmarshalInstructionData(data[1:])
	if err != nil {
		return err
	}

	// An account is only trusted as the counter if re-deriving the address
	// from the claimed owner and bump reproduces its key exactly.
	ownerKey := owner.Key()
	derived, err := pubkey.CreateProgramAddress(
		[][]byte{[]byte(Seed), ownerKey[:], {instruction.Bump}}, p.id)
	if err != nil {
		return err
	}
	if counterInfo.Key() != derived {
		return runtime.ErrInvalidSeeds
	}

	switch data[0] {
	case CreateID:
		return p.create(ctx, ictx, owner, counterInfo, instruction.Bump)
	case IncrementID:
		return p.adjust(ictx, owner, counterInfo, 1)
	case DecrementID:
		return p.adjust(ictx, owner, counterInfo, -1)
	case DeleteID:
		return p.delete(ictx, owner, counterInfo)
	default:
		return runtime.ErrInvalidInstructionData
	}
}

// create allocates the counter record at its derived address and
// zero-initializes it.
func (p *Program) create(
	ctx context.Context,
	ictx *runtime.Context,
	owner *runtime.AccountInfo,
	counterInfo *runtime.AccountInfo,
	bump uint8,
) error {
	ownerKey := owner.Key()
	err := ictx.InvokeSigned(ctx,
		system.NewCreateAccountInstruction(
			p.systemProgram,
			ownerKey,
			counterInfo.Key(),
			ictx.Rent().MinimumBalance(StateLen),
			StateLen,
			p.id,
		),
		[][]byte{[]byte(Seed), ownerKey[:], {bump}},
	)
	if err != nil {
		return err
	}

	if err := setCounter(counterInfo, &Counter{Owner: ownerKey}); err != nil {
		return err
	}

	ictx.Log().Info("created the counter account",
		zap.Stringer("owner", ownerKey))
	return nil
}

// adjust applies a saturating ±1 to the count. Saturation, not failure, is
// the boundary policy.
func (p *Program) adjust(
	ictx *runtime.Context,
	owner *runtime.AccountInfo,
	counterInfo *runtime.AccountInfo,
	delta int,
) error {
	if !counterInfo.OwnedBy(p.id) {
		return runtime.ErrIllegalOwner
	}
	c, err := GetCounter(counterInfo)
	if err != nil {
		return err
	}
	if c.Owner != owner.Key() {
		return runtime.ErrIllegalOwner
	}

	if delta >= 0 {
		c.Count = utils.SaturateAdd64(c.Count, uint64(delta))
	} else {
		c.Count = utils.SaturateSub64(c.Count, uint64(-delta))
	}
	if err := setCounter(counterInfo, c); err != nil {
		return err
	}

	ictx.Log().Info("adjusted the counter",
		zap.Uint64("count", c.Count))
	return nil
}

// delete reclaims the record by draining its balance to the owner. The byte
// contents are intentionally left in place.
func (p *Program) delete(
	ictx *runtime.Context,
	owner *runtime.AccountInfo,
	counterInfo *runtime.AccountInfo,
) error {
	if !counterInfo.OwnedBy(p.id) {
		return runtime.ErrIllegalOwner
	}
	c, err := GetCounter(counterInfo)
	if err != nil {
		return err
	}
	if c.Owner != owner.Key() {
		return runtime.ErrIllegalOwner
	}

	if err := owner.SetLamports(utils.SaturateAdd64(owner.Lamports(), counterInfo.Lamports())); err != nil {
		return err
	}
	return counterInfo.SetLamports(0)
}
