// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger persists accounts keyed by pubkey and provides the buffered
// views the VM executes against. A view holds every change in memory until
// Commit; Discard drops them, which is how a failed transaction leaves no
// trace.
package ledger

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/seedvm/codec"
	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
	"github.com/ava-labs/seedvm/runtime"
)

// Store is the backing account store.
type Store struct {
	db database.Database
}

func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

// Account returns the stored account for [key]. An absent key is a zero
// account owned by the system program.
func (s *Store) Account(_ context.Context, key pubkey.Pubkey) (*runtime.Account, error) {
	v, err := s.db.Get(key[:])
	if errors.Is(err, database.ErrNotFound) {
		return &runtime.Account{Data: []byte{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeAccount(v)
}

// SetAccount stores [acct] under [key]. Zero accounts are deleted so that
// reclaimed storage is indistinguishable from storage that never existed.
func (s *Store) SetAccount(_ context.Context, key pubkey.Pubkey, acct *runtime.Account) error {
	if acct.IsZero() {
		return s.db.Delete(key[:])
	}
	return s.db.Put(key[:], encodeAccount(acct))
}

func encodeAccount(acct *runtime.Account) []byte {
	p := codec.NewWriter(consts.Uint64Len + pubkey.PubkeyLen + consts.Uint32Len + len(acct.Data))
	p.PackUint64(acct.Lamports)
	p.PackPubkey(acct.Owner)
	p.PackUint32(uint32(len(acct.Data)))
	p.PackFixedBytes(acct.Data)
	return p.Bytes()
}

func decodeAccount(b []byte) (*runtime.Account, error) {
	r := codec.NewReader(b)
	acct := &runtime.Account{}
	acct.Lamports = r.UnpackUint64()
	r.UnpackPubkey(&acct.Owner)
	acct.Data = make([]byte, r.UnpackUint32())
	r.UnpackFixedBytes(acct.Data)
	if err := r.Done(); err != nil {
		return nil, err
	}
	return acct, nil
}

// View buffers account changes over a Store for the duration of one
// transaction.
type View struct {
	store   *Store
	changes map[pubkey.Pubkey]*runtime.Account
	order   []pubkey.Pubkey
}

func NewView(store *Store) *View {
	return &View{
		store:   store,
		changes: make(map[pubkey.Pubkey]*runtime.Account),
	}
}

// Account returns a working copy for [key]: buffered change if present,
// otherwise the stored account. Callers own the copy; nothing they do to it
// reaches the view until SetAccount.
func (v *View) Account(ctx context.Context, key pubkey.Pubkey) (*runtime.Account, error) {
	if acct, ok := v.changes[key]; ok {
		return acct.Clone(), nil
	}
	return v.store.Account(ctx, key)
}

func (v *View) SetAccount(_ context.Context, key pubkey.Pubkey, acct *runtime.Account) error {
	if _, ok := v.changes[key]; !ok {
		v.order = append(v.order, key)
	}
	v.changes[key] = acct.Clone()
	return nil
}

// Commit writes all buffered changes to the store in first-touched order.
func (v *View) Commit(ctx context.Context) error {
	for _, key := range v.order {
		if err := v.store.SetAccount(ctx, key, v.changes[key]); err != nil {
			return err
		}
	}
	v.Discard()
	return nil
}

// Discard drops every buffered change.
func (v *View) Discard() {
	v.changes = make(map[pubkey.Pubkey]*runtime.Account)
	v.order = nil
}
