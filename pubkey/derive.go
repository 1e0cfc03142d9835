// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubkey

import (
	"crypto/sha256"

	"github.com/oasisprotocol/curve25519-voi/curve"

	"github.com/ava-labs/seedvm/consts"
)

const (
	MaxSeedLen = 32
	MaxSeeds   = 16

	// derivedMarker domain-separates derived addresses from hashes of
	// arbitrary data.
	derivedMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress derives the account identity bound to [seeds] under
// [program]. The result is the sha256 of seeds|program|marker and is only
// returned if it has no corresponding ed25519 private key, which holds exactly
// when the digest is not a valid curve point. Callers supply a bump byte as
// the final seed to land off-curve; a bump that lands on-curve fails with
// ErrInvalidSeeds and is never retried here.
func CreateProgramAddress(seeds [][]byte, program Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return EmptyPubkey, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return EmptyPubkey, ErrMaxSeedLenExceeded
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(derivedMarker))
	digest := h.Sum(nil)
	if onCurve(digest) {
		return EmptyPubkey, ErrInvalidSeeds
	}
	return Pubkey(digest), nil
}

// FindProgramAddress searches bumps from 255 downward for the first
// derivation of [seeds]|[bump] that lands off-curve. This is the off-chain
// half of the bump contract: clients find the bump in advance and handlers
// only ever verify it.
func FindProgramAddress(seeds [][]byte, program Pubkey) (Pubkey, uint8, error) {
	if len(seeds)+1 > MaxSeeds {
		return EmptyPubkey, 0, ErrTooManySeeds
	}
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)
	for bump := int(consts.MaxUint8); bump >= 0; bump-- {
		bumped[len(seeds)] = []byte{uint8(bump)}
		derived, err := CreateProgramAddress(bumped, program)
		if err == nil {
			return derived, uint8(bump), nil
		}
		if err != ErrInvalidSeeds {
			return EmptyPubkey, 0, err
		}
	}
	return EmptyPubkey, 0, ErrNoViableBump
}

// onCurve reports whether b decompresses to a valid edwards25519 point (and
// therefore could be an ed25519 public key).
func onCurve(b []byte) bool {
	var compressed curve.CompressedEdwardsY
	if _, err := compressed.SetBytes(b); err != nil {
		return false
	}
	var point curve.EdwardsPoint
	_, err := point.SetCompressedY(&compressed)
	return err == nil
}
