// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec provides bounds-checked little-endian packing for the
// fixed-size instruction payloads and the harness's account encoding. There
// is no length prefixing and no self-describing framing; every layout is
// positional with a size known in advance.
package codec

import (
	"encoding/binary"

	"github.com/ava-labs/seedvm/consts"
	"github.com/ava-labs/seedvm/pubkey"
)

// Packer accumulates fixed-layout fields. Errors are sticky: the first
// failure is reported by Err and later operations are no-ops.
type Packer struct {
	b   []byte
	err error
}

func NewWriter(initial int) *Packer {
	return &Packer{b: make([]byte, 0, initial)}
}

func (p *Packer) PackByte(v byte) {
	if p.err != nil {
		return
	}
	p.b = append(p.b, v)
}

func (p *Packer) PackUint32(v uint32) {
	if p.err != nil {
		return
	}
	p.b = binary.LittleEndian.AppendUint32(p.b, v)
}

func (p *Packer) PackUint64(v uint64) {
	if p.err != nil {
		return
	}
	p.b = binary.LittleEndian.AppendUint64(p.b, v)
}

func (p *Packer) PackPubkey(v pubkey.Pubkey) {
	if p.err != nil {
		return
	}
	p.b = append(p.b, v[:]...)
}

// PackFixedBytes appends v without a length prefix.
func (p *Packer) PackFixedBytes(v []byte) {
	if p.err != nil {
		return
	}
	p.b = append(p.b, v...)
}

func (p *Packer) Err() error {
	return p.err
}

func (p *Packer) Bytes() []byte {
	return p.b
}

// Unpacker consumes fixed-layout fields from a byte slice. Reads past the
// end set a sticky ErrInsufficientLength; Done fails unless the input was
// consumed exactly.
type Unpacker struct {
	b      []byte
	offset int
	err    error
}

func NewReader(b []byte) *Unpacker {
	return &Unpacker{b: b}
}

func (u *Unpacker) remaining() int {
	return len(u.b) - u.offset
}

func (u *Unpacker) take(n int) []byte {
	if u.err != nil {
		return nil
	}
	if u.remaining() < n {
		u.err = ErrInsufficientLength
		return nil
	}
	out := u.b[u.offset : u.offset+n]
	u.offset += n
	return out
}

func (u *Unpacker) UnpackByte() byte {
	b := u.take(consts.ByteLen)
	if b == nil {
		return 0
	}
	return b[0]
}

func (u *Unpacker) UnpackUint32() uint32 {
	b := u.take(consts.Uint32Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (u *Unpacker) UnpackUint64() uint64 {
	b := u.take(consts.Uint64Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (u *Unpacker) UnpackPubkey(dst *pubkey.Pubkey) {
	b := u.take(pubkey.PubkeyLen)
	if b == nil {
		return
	}
	copy(dst[:], b)
}

// UnpackFixedBytes copies exactly len(dst) bytes into dst.
func (u *Unpacker) UnpackFixedBytes(dst []byte) {
	b := u.take(len(dst))
	if b == nil {
		return
	}
	copy(dst, b)
}

func (u *Unpacker) Err() error {
	return u.err
}

// Done returns an error unless every input byte was consumed. Payload
// layouts are exact: trailing bytes are as invalid as missing ones.
func (u *Unpacker) Done() error {
	if u.err != nil {
		return u.err
	}
	if u.remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}
