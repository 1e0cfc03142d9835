// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"

	"github.com/ava-labs/seedvm/pubkey"
)

// State is the VM's view of account storage for one transaction. Account
// returns a working copy owned by the caller; SetAccount buffers the
// replacement until the view is committed.
type State interface {
	Account(ctx context.Context, key pubkey.Pubkey) (*Account, error)
	SetAccount(ctx context.Context, key pubkey.Pubkey, acct *Account) error
}

// Program executes one instruction against the accounts and payload carried
// by [ictx]. Execution is synchronous and single-threaded; the VM guarantees
// exclusive access to every account for the instruction's full duration, so
// programs read, check, and write without re-validation.
type Program interface {
	Execute(ctx context.Context, ictx *Context) error
}
