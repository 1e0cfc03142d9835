// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// seedvm-demo walks the three standard scenarios against an in-process VM:
// a counter lifecycle, an escrow deposit paid out to the receiver, and an
// escrow deposit refunded to the sender.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/crypto/ed25519"
	"github.com/ava-labs/seedvm/ledger"
	"github.com/ava-labs/seedvm/programs/counter"
	"github.com/ava-labs/seedvm/programs/escrow"
	"github.com/ava-labs/seedvm/programs/system"
	"github.com/ava-labs/seedvm/programs/token"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seedvm-demo: %v\n", err)
		os.Exit(1)
	}
}

type demo struct {
	log   *zap.Logger
	vm    *runtime.VM
	store *ledger.Store
	rent  runtime.Rent
}

func run() error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rent := runtime.DefaultRent()
	vm, err := runtime.New(log, rent, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	for _, p := range []struct {
		id      pubkey.Pubkey
		program runtime.Program
	}{
		{system.ID, system.New(system.ID)},
		{token.ID, token.New(token.ID)},
		{counter.ID, counter.New(counter.ID, system.ID)},
		{escrow.ID, escrow.New(escrow.ID, system.ID, token.ID)},
	} {
		if err := vm.Register(p.id, p.program); err != nil {
			return err
		}
	}

	d := &demo{
		log:   log,
		vm:    vm,
		store: ledger.NewStore(memdb.New()),
		rent:  rent,
	}
	if err := d.counterScenario(); err != nil {
		return err
	}
	return d.escrowScenarios()
}

func (d *demo) keypair() (ed25519.PrivateKey, pubkey.Pubkey, error) {
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return ed25519.EmptyPrivateKey, pubkey.EmptyPubkey, err
	}
	return priv, pubkey.FromPublicKey(priv.PublicKey()), nil
}

func (d *demo) fund(key pubkey.Pubkey, lamports uint64) error {
	return d.store.SetAccount(context.Background(), key, &runtime.Account{
		Lamports: lamports,
		Data:     []byte{},
	})
}

// seedTokenAccount plants an initialized token balance, standing in for a
// mint authority this walkthrough does not need.
func (d *demo) seedTokenAccount(key pubkey.Pubkey, mint pubkey.Pubkey, owner pubkey.Pubkey, amount uint64) error {
	record, err := (&token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.StateInitialized,
	}).Bytes()
	if err != nil {
		return err
	}
	return d.store.SetAccount(context.Background(), key, &runtime.Account{
		Lamports: d.rent.MinimumBalance(token.AccountLen),
		Data:     record,
		Owner:    token.ID,
	})
}

func (d *demo) submit(tx *runtime.Transaction, signers ...ed25519.PrivateKey) error {
	for _, priv := range signers {
		tx.Sign(priv)
	}
	ctx := context.Background()
	view := ledger.NewView(d.store)
	if err := d.vm.Submit(ctx, view, tx); err != nil {
		view.Discard()
		return err
	}
	return view.Commit(ctx)
}

func (d *demo) counterScenario() error {
	ownerPriv, owner, err := d.keypair()
	if err != nil {
		return err
	}
	if err := d.fund(owner, 1_000_000_000); err != nil {
		return err
	}
	record, bump, err := pubkey.FindProgramAddress(
		[][]byte{[]byte(counter.Seed), owner[:]}, counter.ID)
	if err != nil {
		return err
	}
	d.log.Info("counter scenario",
		zap.Stringer("owner", owner),
		zap.Stringer("record", record),
		zap.Uint8("bump", bump))

	for _, id := range []uint8{
		counter.CreateID,
		counter.IncrementID,
		counter.IncrementID,
		counter.DecrementID,
		counter.DeleteID,
	} {
		tx := runtime.NewTransaction(
			counter.NewInstruction(counter.ID, id, owner, record, system.ID, bump),
		)
		if err := d.submit(tx, ownerPriv); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) escrowScenarios() error {
	alicePriv, alice, err := d.keypair()
	if err != nil {
		return err
	}
	bobPriv, bob, err := d.keypair()
	if err != nil {
		return err
	}
	_, mint, err := d.keypair()
	if err != nil {
		return err
	}
	_, aliceATA, err := d.keypair()
	if err != nil {
		return err
	}
	_, bobATA, err := d.keypair()
	if err != nil {
		return err
	}

	if err := d.fund(alice, 1_000_000_000); err != nil {
		return err
	}
	if err := d.fund(bob, 1_000_000_000); err != nil {
		return err
	}
	if err := d.seedTokenAccount(aliceATA, mint, alice, 1_000); err != nil {
		return err
	}
	if err := d.seedTokenAccount(bobATA, mint, bob, 1_000); err != nil {
		return err
	}

	// Alice escrows 100 for Bob; Bob exchanges.
	if err := d.runEscrow(
		alicePriv, alice, aliceATA,
		bobPriv, bob, bobATA,
		mint, 100, false,
	); err != nil {
		return err
	}

	// Bob escrows 250 for Alice, then thinks better of it and cancels.
	return d.runEscrow(
		bobPriv, bob, bobATA,
		alicePriv, alice, aliceATA,
		mint, 250, true,
	)
}

func (d *demo) runEscrow(
	senderPriv ed25519.PrivateKey,
	sender pubkey.Pubkey,
	senderATA pubkey.Pubkey,
	receiverPriv ed25519.PrivateKey,
	receiver pubkey.Pubkey,
	receiverATA pubkey.Pubkey,
	mint pubkey.Pubkey,
	amount uint64,
	cancel bool,
) error {
	escrowKey, bump, err := pubkey.FindProgramAddress(
		[][]byte{[]byte(escrow.Seed), sender[:], receiver[:]}, escrow.ID)
	if err != nil {
		return err
	}
	_, escrowATA, err := d.keypair()
	if err != nil {
		return err
	}
	if err := d.seedTokenAccount(escrowATA, mint, escrowKey, 0); err != nil {
		return err
	}
	d.log.Info("escrow scenario",
		zap.Stringer("sender", sender),
		zap.Stringer("receiver", receiver),
		zap.Stringer("escrow", escrowKey),
		zap.Uint64("amount", amount),
		zap.Bool("cancel", cancel))

	tx := runtime.NewTransaction(escrow.NewInitializeInstruction(
		escrow.ID, amount,
		sender, senderATA, receiver,
		escrowKey, escrowATA,
		system.ID, token.ID, bump,
	))
	if err := d.submit(tx, senderPriv); err != nil {
		return err
	}

	if cancel {
		tx = runtime.NewTransaction(escrow.NewCancelInstruction(
			escrow.ID,
			sender, senderATA, receiver,
			escrowKey, escrowATA,
			system.ID, token.ID, bump,
		))
		return d.submit(tx, senderPriv)
	}
	tx = runtime.NewTransaction(escrow.NewExchangeInstruction(
		escrow.ID,
		sender, receiver, receiverATA,
		escrowKey, escrowATA,
		system.ID, token.ID, bump,
	))
	return d.submit(tx, receiverPriv)
}
