// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/pubkey"
)

// MaxInvokeDepth bounds cross-program invocation nesting.
const MaxInvokeDepth = 4

// VM executes instructions against a State, one at a time. It owns
// transaction-level signature verification and all-or-nothing effect
// application; programs own every check below that.
type VM struct {
	mu sync.Mutex

	log      *zap.Logger
	rent     Rent
	programs map[pubkey.Pubkey]Program
	metrics  *metrics
}

func New(log *zap.Logger, rent Rent, gatherer prometheus.Registerer) (*VM, error) {
	m, err := newMetrics(gatherer)
	if err != nil {
		return nil, err
	}
	return &VM{
		log:      log,
		rent:     rent,
		programs: make(map[pubkey.Pubkey]Program),
		metrics:  m,
	}, nil
}

// Register installs [p] as the handler for instructions targeting [id].
func (vm *VM) Register(id pubkey.Pubkey, p Program) error {
	if _, ok := vm.programs[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProgram, id)
	}
	vm.programs[id] = p
	return nil
}

// Submit verifies [tx]'s signatures and executes its instructions in order
// against [state]. Any failure aborts the whole transaction; no effect
// reaches [state]'s backing store until the caller commits the view.
func (vm *VM) Submit(ctx context.Context, state State, tx *Transaction) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if err := vm.verifySignatures(tx); err != nil {
		vm.metrics.txsRejected.Inc()
		return err
	}
	for i, instr := range tx.Instructions {
		if err := vm.process(ctx, state, instr); err != nil {
			vm.metrics.txsRejected.Inc()
			vm.log.Debug("instruction aborted",
				zap.Int("index", i),
				zap.Stringer("program", instr.ProgramID),
				zap.Error(err),
			)
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	vm.metrics.txsAccepted.Inc()
	return nil
}

// verifySignatures checks that every account marked as a signer anywhere in
// the transaction supplied a valid ed25519 signature over the message.
// Derived addresses cannot pass here; they acquire signer status only
// through InvokeSigned seed proofs.
func (vm *VM) verifySignatures(tx *Transaction) error {
	verified := set.NewSet[pubkey.Pubkey](4)
	for _, instr := range tx.Instructions {
		for _, meta := range instr.Accounts {
			if !meta.IsSigner || verified.Contains(meta.Pubkey) {
				continue
			}
			if !tx.SignedBy(meta.Pubkey) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, meta.Pubkey)
			}
			verified.Add(meta.Pubkey)
		}
	}
	return nil
}

// process executes one top-level instruction atomically: accounts are
// loaded as working copies, the program runs, and only on success are the
// copies written back to [state].
func (vm *VM) process(ctx context.Context, state State, instr Instruction) error {
	f := &frame{
		vm:      vm,
		state:   state,
		entries: make(map[pubkey.Pubkey]*frameEntry, len(instr.Accounts)),
	}
	ictx, err := f.push(ctx, instr, nil, nil, 0)
	if err != nil {
		return err
	}
	program, ok := vm.programs[instr.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, instr.ProgramID)
	}
	vm.metrics.instructionsExecuted.Inc()
	if err := program.Execute(ctx, ictx); err != nil {
		return err
	}
	return f.persist(ctx)
}

// frameEntry is the per-transaction working copy of one account, tagged
// with the privileges granted at the top level of the instruction.
type frameEntry struct {
	acct     *Account
	signer   bool
	writable bool
}

// frame is the execution state shared by an instruction and everything it
// invokes. All invocations mutate the same working copies, so effects are
// visible across cross-program calls but never outside the frame until
// persist.
type frame struct {
	vm      *VM
	state   State
	entries map[pubkey.Pubkey]*frameEntry
	order   []pubkey.Pubkey
}

func (f *frame) entry(ctx context.Context, key pubkey.Pubkey, load bool) (*frameEntry, error) {
	if e, ok := f.entries[key]; ok {
		return e, nil
	}
	if !load {
		return nil, fmt.Errorf("%w: %s", ErrMissingAccount, key)
	}
	acct, err := f.state.Account(ctx, key)
	if err != nil {
		return nil, err
	}
	e := &frameEntry{acct: acct}
	f.entries[key] = e
	f.order = append(f.order, key)
	return e, nil
}

// push builds the Context for an invocation. For the top-level instruction
// (caller == nil) accounts are loaded from state and privileges come from
// the metas as verified by Submit. For inner invocations every account must
// already be present and privileges may only be inherited from the caller
// or proven with derivation seeds.
func (f *frame) push(
	ctx context.Context,
	instr Instruction,
	caller *Context,
	derivedSigners set.Set[pubkey.Pubkey],
	depth int,
) (*Context, error) {
	accounts := make([]*AccountInfo, len(instr.Accounts))
	for i, meta := range instr.Accounts {
		e, err := f.entry(ctx, meta.Pubkey, caller == nil)
		if err != nil {
			return nil, err
		}
		signer := meta.IsSigner
		writable := meta.IsWritable
		if caller == nil {
			// Record top-level privileges for inheritance checks below.
			e.signer = e.signer || signer
			e.writable = e.writable || writable
		} else {
			if signer && !e.signer && !derivedSigners.Contains(meta.Pubkey) {
				return nil, fmt.Errorf("%w: signer %s", ErrPrivilegeEscalation, meta.Pubkey)
			}
			if writable && !e.writable {
				return nil, fmt.Errorf("%w: writable %s", ErrPrivilegeEscalation, meta.Pubkey)
			}
		}
		accounts[i] = &AccountInfo{
			key:      meta.Pubkey,
			acct:     e.acct,
			signer:   signer,
			writable: writable,
		}
	}
	return &Context{
		program:  instr.ProgramID,
		accounts: accounts,
		data:     instr.Data,
		frame:    f,
		depth:    depth,
	}, nil
}

func (f *frame) invoke(ctx context.Context, caller *Context, instr Instruction, seedSets [][][]byte) error {
	if caller.depth+1 >= MaxInvokeDepth {
		return ErrCallDepthExceeded
	}
	program, ok := f.vm.programs[instr.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, instr.ProgramID)
	}

	// Addresses derived from the calling program's identity sign by proof:
	// supplying seeds that reproduce the address is equivalent to a
	// signature from a key that does not exist.
	derivedSigners := set.NewSet[pubkey.Pubkey](len(seedSets))
	for _, seeds := range seedSets {
		derived, err := pubkey.CreateProgramAddress(seeds, caller.program)
		if err != nil {
			return err
		}
		derivedSigners.Add(derived)
	}

	ictx, err := f.push(ctx, instr, caller, derivedSigners, caller.depth+1)
	if err != nil {
		return err
	}
	f.vm.metrics.invocations.Inc()
	return program.Execute(ctx, ictx)
}

// persist writes every working copy back to the state view in load order.
func (f *frame) persist(ctx context.Context) error {
	for _, key := range f.order {
		if err := f.state.SetAccount(ctx, key, f.entries[key].acct); err != nil {
			return err
		}
	}
	return nil
}
