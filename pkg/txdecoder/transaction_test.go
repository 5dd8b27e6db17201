package txdecoder

import (
	"encoding/hex"
	"testing"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/bytesreader"

	"github.com/stretchr/testify/require"
)

// A minimal legacy one-in-one-out transaction: version 1, one input
// spending the null (coinbase) outpoint with an empty scriptSig, one output
// of 5000000000 sats to an empty scriptPubKey, locktime 0.
const legacyTxHex = "01000000" + // version
	"01" + // input count
	"0000000000000000000000000000000000000000000000000000000000000000" + // prev hash
	"ffffffff" + // prev index
	"00" + // scriptSig length
	"ffffffff" + // sequence
	"01" + // output count
	"00f2052a01000000" + // value = 5000000000
	"00" + // scriptPubKey length
	"00000000" // locktime

func TestDecode_Legacy(t *testing.T) {
	raw, err := hex.DecodeString(legacyTxHex)
	require.NoError(t, err)

	r := bytesreader.New(raw, coreerr.CodeInvalidTx)
	tx, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, 0, r.Remaining())

	require.False(t, tx.Segwit)
	require.Equal(t, int32(1), tx.Version)
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.Outputs, 1)
	require.Equal(t, int64(5000000000), tx.Outputs[0].Value)
	require.True(t, tx.Inputs[0].PrevOutpoint.IsCoinbase())
}

func TestDecode_ZeroInputsRejected(t *testing.T) {
	raw := []byte{
		0x01, 0x00, 0x00, 0x00, // version
		0x00,                   // input count = 0
		0x00,                   // output count = 0
		0x00, 0x00, 0x00, 0x00, // locktime
	}
	r := bytesreader.New(raw, coreerr.CodeInvalidTx)
	_, err := Decode(r)
	require.Error(t, err)
	require.Equal(t, coreerr.CodeInvalidTx, coreerr.CodeOf(err))
}

func TestDecode_TruncatedFailsCleanly(t *testing.T) {
	raw, err := hex.DecodeString(legacyTxHex[:20])
	require.NoError(t, err)
	r := bytesreader.New(raw, coreerr.CodeInvalidTx)
	_, err = Decode(r)
	require.Error(t, err)
	require.Equal(t, coreerr.CodeInvalidTx, coreerr.CodeOf(err))
}
