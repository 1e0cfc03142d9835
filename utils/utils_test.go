// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/seedvm/consts"
)

func TestSaturateAdd64(t *testing.T) {
	require := require.New(t)

	require.Equal(uint64(3), SaturateAdd64(1, 2))
	require.Equal(consts.MaxUint64, SaturateAdd64(consts.MaxUint64, 1))
	require.Equal(consts.MaxUint64, SaturateAdd64(consts.MaxUint64, consts.MaxUint64))
	require.Equal(consts.MaxUint64, SaturateAdd64(1, consts.MaxUint64-1))
	require.Equal(uint64(0), SaturateAdd64(0, 0))
}

func TestSaturateSub64(t *testing.T) {
	require := require.New(t)

	require.Equal(uint64(1), SaturateSub64(3, 2))
	require.Equal(uint64(0), SaturateSub64(0, 1))
	require.Equal(uint64(0), SaturateSub64(5, consts.MaxUint64))
	require.Equal(consts.MaxUint64-1, SaturateSub64(consts.MaxUint64, 1))
}
