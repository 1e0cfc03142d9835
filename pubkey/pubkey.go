// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubkey

import (
	"github.com/mr-tron/base58"

	"github.com/ava-labs/seedvm/crypto/ed25519"
)

const PubkeyLen = 32

// Pubkey is the 32-byte identity of an account. Keys backed by a private key
// are ed25519 public keys; program-derived keys are proven to have no private
// key (see Derive).
type Pubkey [PubkeyLen]byte

var EmptyPubkey = Pubkey{}

// FromPublicKey converts a signing key into an account identity.
func FromPublicKey(pk ed25519.PublicKey) Pubkey {
	return Pubkey(pk)
}

// PublicKey reinterprets p as a signing key for signature verification.
func (p Pubkey) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(p)
}

// Parse decodes a base58-encoded account identity.
func Parse(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPubkey, err
	}
	if len(b) != PubkeyLen {
		return EmptyPubkey, ErrInvalidPubkey
	}
	return Pubkey(b), nil
}

// MustParse is Parse for well-known constants.
func MustParse(s string) Pubkey {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String implements fmt.Stringer.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// MarshalText returns the base58 representation of p.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a base58-encoded identity.
func (p *Pubkey) UnmarshalText(input []byte) error {
	k, err := Parse(string(input))
	if err != nil {
		return err
	}
	*p = k
	return nil
}
