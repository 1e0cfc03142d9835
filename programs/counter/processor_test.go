// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/crypto/ed25519"
	"github.com/ava-labs/seedvm/ledger"
	"github.com/ava-labs/seedvm/programs/counter"
	"github.com/ava-labs/seedvm/programs/system"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

type testEnv struct {
	t     *testing.T
	vm    *runtime.VM
	store *ledger.Store
	rent  runtime.Rent
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rent := runtime.DefaultRent()
	vm, err := runtime.New(zap.NewNop(), rent, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, vm.Register(system.ID, system.New(system.ID)))
	require.NoError(t, vm.Register(counter.ID, counter.New(counter.ID, system.ID)))
	return &testEnv{
		t:     t,
		vm:    vm,
		store: ledger.NewStore(memdb.New()),
		rent:  rent,
	}
}

func (e *testEnv) keypair() (ed25519.PrivateKey, pubkey.Pubkey) {
	e.t.Helper()

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(e.t, err)
	return priv, pubkey.FromPublicKey(priv.PublicKey())
}

func (e *testEnv) fund(key pubkey.Pubkey, lamports uint64) {
	e.t.Helper()

	require.NoError(e.t, e.store.SetAccount(context.Background(), key, &runtime.Account{
		Lamports: lamports,
		Data:     []byte{},
	}))
}

// counterAddress derives the counter record's address for [owner].
func (e *testEnv) counterAddress(owner pubkey.Pubkey) (pubkey.Pubkey, uint8) {
	e.t.Helper()

	derived, bump, err := pubkey.FindProgramAddress(
		[][]byte{[]byte(counter.Seed), owner[:]}, counter.ID)
	require.NoError(e.t, err)
	return derived, bump
}

func (e *testEnv) counterRecord(key pubkey.Pubkey) *counter.Counter {
	e.t.Helper()

	acct, err := e.store.Account(context.Background(), key)
	require.NoError(e.t, err)
	info := runtime.NewAccountInfo(key, acct, false, false)
	c, err := counter.GetCounter(info)
	require.NoError(e.t, err)
	return c
}

// setCounterRecord plants a counter record directly in the backing store,
// bypassing the create instruction.
func (e *testEnv) setCounterRecord(key pubkey.Pubkey, c *counter.Counter) {
	e.t.Helper()

	record, err := c.Bytes()
	require.NoError(e.t, err)
	require.NoError(e.t, e.store.SetAccount(context.Background(), key, &runtime.Account{
		Lamports: e.rent.MinimumBalance(counter.StateLen),
		Data:     record,
		Owner:    counter.ID,
	}))
}

func (e *testEnv) submit(tx *runtime.Transaction, signers ...ed25519.PrivateKey) error {
	e.t.Helper()

	for _, priv := range signers {
		tx.Sign(priv)
	}
	ctx := context.Background()
	view := ledger.NewView(e.store)
	if err := e.vm.Submit(ctx, view, tx); err != nil {
		view.Discard()
		return err
	}
	return view.Commit(ctx)
}

func (e *testEnv) instruction(id uint8, owner pubkey.Pubkey, record pubkey.Pubkey, bump uint8) *runtime.Transaction {
	return runtime.NewTransaction(
		counter.NewInstruction(counter.ID, id, owner, record, system.ID, bump),
	)
}

func TestCounterLifecycle(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	// Create: record exists, owned by the program, count zero.
	require.NoError(e.submit(e.instruction(counter.CreateID, owner, record, bump), ownerPriv))
	c := e.counterRecord(record)
	require.Equal(owner, c.Owner)
	require.Zero(c.Count)

	// Two increments, one decrement.
	require.NoError(e.submit(e.instruction(counter.IncrementID, owner, record, bump), ownerPriv))
	require.NoError(e.submit(e.instruction(counter.IncrementID, owner, record, bump), ownerPriv))
	require.Equal(uint64(2), e.counterRecord(record).Count)
	require.NoError(e.submit(e.instruction(counter.DecrementID, owner, record, bump), ownerPriv))
	require.Equal(uint64(1), e.counterRecord(record).Count)

	// Delete drains the record's balance back to the owner.
	ctx := context.Background()
	before, err := e.store.Account(ctx, owner)
	require.NoError(err)
	recordBalance := e.rent.MinimumBalance(counter.StateLen)
	require.NoError(e.submit(e.instruction(counter.DeleteID, owner, record, bump), ownerPriv))
	after, err := e.store.Account(ctx, owner)
	require.NoError(err)
	require.Equal(before.Lamports+recordBalance, after.Lamports)
	drained, err := e.store.Account(ctx, record)
	require.NoError(err)
	require.Zero(drained.Lamports)
}

func TestCounterCreateTwice(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	require.NoError(e.submit(e.instruction(counter.CreateID, owner, record, bump), ownerPriv))
	err := e.submit(e.instruction(counter.CreateID, owner, record, bump), ownerPriv)
	require.ErrorIs(err, runtime.ErrAccountAlreadyInUse)
}

func TestCounterCreateInsufficientFunds(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1) // far below the rent-exempt minimum
	record, bump := e.counterAddress(owner)

	err := e.submit(e.instruction(counter.CreateID, owner, record, bump), ownerPriv)
	require.ErrorIs(err, runtime.ErrInsufficientFunds)

	// Nothing was created.
	acct, err := e.store.Account(context.Background(), record)
	require.NoError(err)
	require.True(acct.IsZero())
}

func TestCounterWrongBump(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	err := e.submit(e.instruction(counter.CreateID, owner, record, bump-1), ownerPriv)
	require.ErrorIs(err, runtime.ErrInvalidSeeds)
}

func TestCounterForeignRecordRejected(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	victimPriv, victim := e.keypair()
	attackerPriv, attacker := e.keypair()
	e.fund(victim, 1_000_000_000)
	e.fund(attacker, 1_000_000_000)
	record, bump := e.counterAddress(victim)
	require.NoError(e.submit(e.instruction(counter.CreateID, victim, record, bump), victimPriv))

	// The attacker signs but names the victim's record: re-derivation from
	// the attacker's key cannot reproduce its address.
	err := e.submit(e.instruction(counter.IncrementID, attacker, record, bump), attackerPriv)
	require.ErrorIs(err, runtime.ErrInvalidSeeds)
	require.Zero(e.counterRecord(record).Count)
}

func TestCounterStoredOwnerMismatch(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	attackerPriv, attacker := e.keypair()
	_, victim := e.keypair()
	e.fund(attacker, 1_000_000_000)

	// A record planted at the attacker's derived address but recording the
	// victim as owner: derivation passes, the stored-owner check must not.
	record, bump := e.counterAddress(attacker)
	e.setCounterRecord(record, &counter.Counter{Owner: victim, Count: 7})

	err := e.submit(e.instruction(counter.IncrementID, attacker, record, bump), attackerPriv)
	require.ErrorIs(err, runtime.ErrIllegalOwner)
	require.Equal(uint64(7), e.counterRecord(record).Count)
}

func TestCounterForeignOwnerProgram(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	// Right address, but storage owned by some other program.
	bytes, err := (&counter.Counter{Owner: owner}).Bytes()
	require.NoError(err)
	_, other := e.keypair()
	require.NoError(e.store.SetAccount(context.Background(), record, &runtime.Account{
		Lamports: 1,
		Data:     bytes,
		Owner:    other,
	}))

	require.ErrorIs(
		e.submit(e.instruction(counter.IncrementID, owner, record, bump), ownerPriv),
		runtime.ErrIllegalOwner,
	)
}

func TestCounterSaturation(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	// Decrement at zero stays at zero.
	e.setCounterRecord(record, &counter.Counter{Owner: owner})
	require.NoError(e.submit(e.instruction(counter.DecrementID, owner, record, bump), ownerPriv))
	require.Zero(e.counterRecord(record).Count)

	// Increment at the ceiling stays at the ceiling.
	e.setCounterRecord(record, &counter.Counter{Owner: owner, Count: consts.MaxUint64})
	require.NoError(e.submit(e.instruction(counter.IncrementID, owner, record, bump), ownerPriv))
	require.Equal(uint64(consts.MaxUint64), e.counterRecord(record).Count)
}

func TestCounterMissingSignature(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	_, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)
	e.setCounterRecord(record, &counter.Counter{Owner: owner})

	instr := counter.NewInstruction(counter.ID, counter.IncrementID, owner, record, system.ID, bump)
	instr.Accounts[0].IsSigner = false
	err := e.submit(runtime.NewTransaction(instr))
	require.ErrorIs(err, runtime.ErrMissingRequiredSignature)
}

func TestCounterMalformedPayload(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)
	e.setCounterRecord(record, &counter.Counter{Owner: owner})

	// Empty, missing bump, trailing byte, unknown discriminator.
	for _, data := range [][]byte{
		nil,
		{counter.IncrementID},
		{counter.IncrementID, bump, 0},
		{0xff, bump},
	} {
		instr := counter.NewInstruction(counter.ID, counter.IncrementID, owner, record, system.ID, bump)
		instr.Data = data
		err := e.submit(runtime.NewTransaction(instr), ownerPriv)
		require.ErrorIs(err, runtime.ErrInvalidInstructionData)
	}
}

func TestCounterNotEnoughAccounts(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)

	instr := counter.NewInstruction(counter.ID, counter.CreateID, owner, record, system.ID, bump)
	instr.Accounts = instr.Accounts[:1]
	err := e.submit(runtime.NewTransaction(instr), ownerPriv)
	require.ErrorIs(err, runtime.ErrNotEnoughAccountKeys)
}

func TestCounterFailedTransactionLeavesNoTrace(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ownerPriv, owner := e.keypair()
	e.fund(owner, 1_000_000_000)
	record, bump := e.counterAddress(owner)
	e.setCounterRecord(record, &counter.Counter{Owner: owner, Count: 3})

	// A valid increment followed by a malformed instruction: the whole
	// transaction fails and the successful increment is rolled back.
	bad := counter.NewInstruction(counter.ID, counter.IncrementID, owner, record, system.ID, bump)
	bad.Data = []byte{0xff}
	tx := runtime.NewTransaction(
		counter.NewInstruction(counter.ID, counter.IncrementID, owner, record, system.ID, bump),
		bad,
	)
	require.ErrorIs(e.submit(tx, ownerPriv), runtime.ErrInvalidInstructionData)
	require.Equal(uint64(3), e.counterRecord(record).Count)
}
