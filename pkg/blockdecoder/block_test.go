package blockdecoder

import (
	"testing"

	"chain-lens/pkg/txdecoder"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func TestXORDecode_ZeroKeyIsNoop(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	require.Equal(t, data, XORDecode(data, nil))
	require.Equal(t, data, XORDecode(data, []byte{0x00, 0x00}))
}

func TestXORDecode_RoundTrips(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	key := []byte{0x01, 0x02}
	encoded := XORDecode(data, key)
	require.NotEqual(t, data, encoded)
	require.Equal(t, data, XORDecode(encoded, key))
}

func TestExtractBIP34Height(t *testing.T) {
	// Push of 3 bytes encoding height 500000 little-endian: 0x07A120.
	scriptSig := []byte{0x03, 0x20, 0xa1, 0x07}
	require.Equal(t, int64(500000), ExtractBIP34Height(scriptSig))
}

func TestExtractBIP34Height_CompactSmallIntEncoding(t *testing.T) {
	// OP_1..OP_16 (0x51..0x60) encode heights 1..16 as a single opcode
	// rather than a length-prefixed push.
	require.Equal(t, int64(1), ExtractBIP34Height([]byte{0x51}))
	require.Equal(t, int64(16), ExtractBIP34Height([]byte{0x60}))
}

func TestExtractBIP34Height_OP0YieldsZero(t *testing.T) {
	require.Equal(t, int64(0), ExtractBIP34Height([]byte{0x00}))
}

func TestExtractBIP34Height_TooShortYieldsZero(t *testing.T) {
	require.Equal(t, int64(0), ExtractBIP34Height([]byte{0x01}))
}

func TestComputeMerkleRoot_SingleTx(t *testing.T) {
	var h chainhash.Hash
	h[0] = 0xaa
	tx := &txdecoder.Transaction{Txid: h}
	require.Equal(t, h, computeMerkleRoot([]*txdecoder.Transaction{tx}))
}

func TestComputeMerkleRoot_OddCountDuplicatesLast(t *testing.T) {
	var h1, h2, h3 chainhash.Hash
	h1[0], h2[0], h3[0] = 0x01, 0x02, 0x03
	txs := []*txdecoder.Transaction{{Txid: h1}, {Txid: h2}, {Txid: h3}}

	root := computeMerkleRoot(txs)

	var pair34 [64]byte
	copy(pair34[:32], h3[:])
	copy(pair34[32:], h3[:])
	level2Right := chainhash.DoubleHashH(pair34[:])

	var pair12 [64]byte
	copy(pair12[:32], h1[:])
	copy(pair12[32:], h2[:])
	level2Left := chainhash.DoubleHashH(pair12[:])

	var top [64]byte
	copy(top[:32], level2Left[:])
	copy(top[32:], level2Right[:])
	want := chainhash.DoubleHashH(top[:])

	require.Equal(t, want, root)
}
