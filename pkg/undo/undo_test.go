package undo

import (
	"testing"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/bytesreader"

	"github.com/stretchr/testify/require"
)

func TestReadCompressedVarInt_SingleByte(t *testing.T) {
	r := bytesreader.New([]byte{0x05}, coreerr.CodeInvalidUndo)
	v, err := ReadCompressedVarInt(r)
	require.NoError(t, err)
	require.Equal(t, uint64(5), v)
}

func TestReadCompressedVarInt_Continuation(t *testing.T) {
	// 0x80 0x00 encodes 128 under the continuation-byte +1 folding rule.
	r := bytesreader.New([]byte{0x80, 0x00}, coreerr.CodeInvalidUndo)
	v, err := ReadCompressedVarInt(r)
	require.NoError(t, err)
	require.Equal(t, uint64(128), v)
}

func TestDecompressAmount_Zero(t *testing.T) {
	require.Equal(t, int64(0), DecompressAmount(0))
}

func TestDecompressAmount_OneSatoshi(t *testing.T) {
	// CompressAmount(1) == 1 in Bitcoin Core; round-trip via the known pair.
	require.Equal(t, int64(1), DecompressAmount(1))
}

func TestReadRecord_P2PKH(t *testing.T) {
	// nCode=0 (height 0, not coinbase), compressed amount=0, nSize=0, 20-byte hash.
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = byte(i)
	}
	buf := append([]byte{0x00, 0x00, 0x00}, hash...)
	r := bytesreader.New(buf, coreerr.CodeInvalidUndo)

	p, err := ReadRecord(r)
	require.NoError(t, err)
	require.Equal(t, int64(0), p.ValueSats)
	require.Len(t, p.ScriptPubkey, 25)
	require.Equal(t, byte(0x76), p.ScriptPubkey[0])
	require.Equal(t, byte(0xac), p.ScriptPubkey[24])
}

func TestReadRecord_TruncatedFailsWithUndoCode(t *testing.T) {
	r := bytesreader.New([]byte{0x00, 0x00, 0x00, 0x01}, coreerr.CodeInvalidUndo)
	_, err := ReadRecord(r)
	require.Error(t, err)
	require.Equal(t, coreerr.CodeInvalidUndo, coreerr.CodeOf(err))
}
