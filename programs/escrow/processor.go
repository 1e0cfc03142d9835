// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package escrow implements a single-use token escrow. A sender deposits a
// fixed amount into custody held by an address derived from the
// (sender, receiver) pair; the deposit is then consumed exactly once, either
// paid out to the receiver (Exchange) or refunded to the sender (Cancel).
package escrow

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/seedvm/programs/system"
	"github.com/ava-labs/seedvm/programs/token"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// ID is the canonical identity the program is deployed under.
var ID = pubkey.MustParse("AMeUviQdjAPsvfWwRfboCLrN7t2fjSxqs4eMZguezpQr")

var _ runtime.Program = (*Program)(nil)

type Program struct {
	id            pubkey.Pubkey
	systemProgram pubkey.Pubkey
	tokenProgram  pubkey.Pubkey
}

// New configures the program with its own identity and its two external
// collaborators: the account-creation service and the token-custody service.
func New(id pubkey.Pubkey, systemProgram pubkey.Pubkey, tokenProgram pubkey.Pubkey) *Program {
	return &Program{id: id, systemProgram: systemProgram, tokenProgram: tokenProgram}
}

func (p *Program) Execute(ctx context.Context, ictx *runtime.Context) error {
	data := ictx.Data()
	if len(data) == 0 {
		return runtime.ErrInvalidInstructionData
	}
	switch data[0] {
	case InitializeID:
		return p.initialize(ctx, ictx, data[1:])
	case ExchangeID:
		return p.exchange(ctx, ictx, data[1:])
	case CancelID:
		return p.cancel(ctx, ictx, data[1:])
	default:
		return runtime.ErrInvalidInstructionData
	}
}

// deriveEscrow re-derives the escrow address from the claimed parties and
// bump and requires it to match the supplied account exactly. This binding
// is what makes the record trustworthy: no field of it is believed until
// the address proves which (sender, receiver) pair it belongs to.
func (p *Program) deriveEscrow(
	escrowInfo *runtime.AccountInfo,
	sender pubkey.Pubkey,
	receiver pubkey.Pubkey,
	bump uint8,
) error {
	derived, err := pubkey.CreateProgramAddress(
		[][]byte{[]byte(Seed), sender[:], receiver[:], {bump}}, p.id)
	if err != nil {
		return err
	}
	if escrowInfo.Key() != derived {
		return runtime.ErrInvalidSeeds
	}
	return nil
}

// initialize creates the escrow record and performs the deposit transfer in
// one step, so the recorded amount is by construction the deposited amount.
func (p *Program) initialize(ctx context.Context, ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(7)
	if err != nil {
		return err
	}
	sender, senderATA, receiver, escrowInfo, escrowATA := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	if !sender.IsSigner() {
		return runtime.ErrMissingRequiredSignature
	}

	// The sender's token account must be owned by the sender and the escrow
	// token account by the escrow record's address.
	senderToken, err := token.GetAccount(senderATA)
	if err != nil {
		return err
	}
	if senderToken.Owner != sender.Key() {
		return runtime.ErrIllegalOwner
	}
	escrowToken, err := token.GetAccount(escrowATA)
	if err != nil {
		return err
	}
	if escrowToken.Owner != escrowInfo.Key() {
		return runtime.ErrIllegalOwner
	}

	data, err := unmarshalInitializeData(payload)
	if err != nil {
		return err
	}
	senderKey, receiverKey := sender.Key(), receiver.Key()
	if err := p.deriveEscrow(escrowInfo, senderKey, receiverKey, data.Bump); err != nil {
		return err
	}

	// Create the escrow record at its derived address, funded by the sender.
	err = ictx.InvokeSigned(ctx,
		system.NewCreateAccountInstruction(
			p.systemProgram,
			senderKey,
			escrowInfo.Key(),
			ictx.Rent().MinimumBalance(StateLen),
			StateLen,
			p.id,
		),
		[][]byte{[]byte(Seed), senderKey[:], receiverKey[:], {data.Bump}},
	)
	if err != nil {
		return err
	}

	if err := setEscrow(escrowInfo, &Escrow{
		Sender:   senderKey,
		Receiver: receiverKey,
		Amount:   data.Amount,
	}); err != nil {
		return err
	}

	// Move the deposit into custody under the sender's own authority.
	err = ictx.Invoke(ctx, token.NewTransferInstruction(
		p.tokenProgram,
		senderATA.Key(),
		escrowATA.Key(),
		senderKey,
		data.Amount,
	))
	if err != nil {
		return err
	}

	ictx.Log().Info("initialized escrow",
		zap.Stringer("sender", senderKey),
		zap.Stringer("receiver", receiverKey),
		zap.Uint64("amount", data.Amount))
	return nil
}

// exchange pays the recorded amount to the recorded receiver. The payload
// carries no amount: the quantity moved is always re-derived from the
// record, so a forged payload cannot redirect more than was deposited.
func (p *Program) exchange(ctx context.Context, ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(7)
	if err != nil {
		return err
	}
	sender, receiver, receiverATA, escrowInfo, escrowATA := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	receiverToken, err := token.GetAccount(receiverATA)
	if err != nil {
		return err
	}
	if receiverToken.Owner != receiver.Key() {
		return runtime.ErrIllegalOwner
	}
	escrowToken, err := token.GetAccount(escrowATA)
	if err != nil {
		return err
	}
	if escrowToken.Owner != escrowInfo.Key() {
		return runtime.ErrIllegalOwner
	}

	data, err := unmarshalFinalizeData(payload)
	if err != nil {
		return err
	}
	senderKey, receiverKey := sender.Key(), receiver.Key()
	if err := p.deriveEscrow(escrowInfo, senderKey, receiverKey, data.Bump); err != nil {
		return err
	}
	if !escrowInfo.OwnedBy(p.id) {
		return runtime.ErrIllegalOwner
	}

	record, err := GetEscrow(escrowInfo)
	if err != nil {
		return err
	}
	if record.Receiver != receiverKey {
		return runtime.ErrIllegalOwner
	}

	// Pay out under the escrow's derived authority, then retire the record's
	// amount so a replayed exchange has nothing left to move.
	err = ictx.InvokeSigned(ctx,
		token.NewTransferInstruction(
			p.tokenProgram,
			escrowATA.Key(),
			receiverATA.Key(),
			escrowInfo.Key(),
			record.Amount,
		),
		[][]byte{[]byte(Seed), senderKey[:], receiverKey[:], {data.Bump}},
	)
	if err != nil {
		return err
	}

	amount := record.Amount
	record.Amount = 0
	if err := setEscrow(escrowInfo, record); err != nil {
		return err
	}

	ictx.Log().Info("exchanged escrowed tokens",
		zap.Stringer("receiver", receiverKey),
		zap.Uint64("amount", amount))
	return nil
}

// cancel refunds the recorded amount to the recorded sender.
func (p *Program) cancel(ctx context.Context, ictx *runtime.Context, payload []byte) error {
	accounts, err := ictx.Accounts(7)
	if err != nil {
		return err
	}
	sender, senderATA, receiver, escrowInfo, escrowATA := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	senderToken, err := token.GetAccount(senderATA)
	if err != nil {
		return err
	}
	if senderToken.Owner != sender.Key() {
		return runtime.ErrIllegalOwner
	}
	escrowToken, err := token.GetAccount(escrowATA)
	if err != nil {
		return err
	}
	if escrowToken.Owner != escrowInfo.Key() {
		return runtime.ErrIllegalOwner
	}

	data, err := unmarshalFinalizeData(payload)
	if err != nil {
		return err
	}
	senderKey, receiverKey := sender.Key(), receiver.Key()
	if err := p.deriveEscrow(escrowInfo, senderKey, receiverKey, data.Bump); err != nil {
		return err
	}
	if !escrowInfo.OwnedBy(p.id) {
		return runtime.ErrIllegalOwner
	}

	record, err := GetEscrow(escrowInfo)
	if err != nil {
		return err
	}
	if record.Sender != senderKey {
		return runtime.ErrIllegalOwner
	}

	err = ictx.InvokeSigned(ctx,
		token.NewTransferInstruction(
			p.tokenProgram,
			escrowATA.Key(),
			senderATA.Key(),
			escrowInfo.Key(),
			record.Amount,
		),
		[][]byte{[]byte(Seed), senderKey[:], receiverKey[:], {data.Bump}},
	)
	if err != nil {
		return err
	}

	amount := record.Amount
	record.Amount = 0
	if err := setEscrow(escrowInfo, record); err != nil {
		return err
	}

	ictx.Log().Info("cancelled escrow, refunded tokens",
		zap.Stringer("sender", senderKey),
		zap.Uint64("amount", amount))
	return nil
}
