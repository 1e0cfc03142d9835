// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

// Rent is the ledger's storage-economics oracle, an opaque function of byte
// size from the programs' point of view.
type Rent struct {
	// LamportsPerByteYear is the annual cost of one byte of storage.
	LamportsPerByteYear uint64

	// ExemptionThreshold is the number of years of rent an account must
	// hold to be exempt from collection.
	ExemptionThreshold float64

	// StorageOverhead is charged per account on top of its data length.
	StorageOverhead uint64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		StorageOverhead:     128,
	}
}

// MinimumBalance returns the rent-exempt balance for an account of
// [space] data bytes.
func (r Rent) MinimumBalance(space uint64) uint64 {
	return uint64(float64((r.StorageOverhead+space)*r.LamportsPerByteYear) * r.ExemptionThreshold)
}
