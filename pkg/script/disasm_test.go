package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassemble_P2PKH(t *testing.T) {
	script := mustHex(t, "76a914"+"00112233445566778899aabbccddeeff00112233"+"88ac")
	got := Disassemble(script)
	require.Equal(t, "OP_DUP OP_HASH160 OP_PUSHBYTES_20 00112233445566778899aabbccddeeff00112233 OP_EQUALVERIFY OP_CHECKSIG", got)
}

func TestDisassemble_Empty(t *testing.T) {
	require.Equal(t, "", Disassemble(nil))
}

func TestDisassemble_TruncatedPush(t *testing.T) {
	got := Disassemble([]byte{0x05, 0x01, 0x02})
	require.Equal(t, "OP_PUSHBYTES_5", got)
}

func TestDisassemble_SmallIntegers(t *testing.T) {
	require.Equal(t, "OP_1 OP_16", Disassemble([]byte{0x51, 0x60}))
}

func TestPushes_ReturnsOperandsInOrder(t *testing.T) {
	script := mustHex(t, "04" + "61626364" + "02" + "6566")
	pushes := Pushes(script)
	require.Len(t, pushes, 2)
	require.Equal(t, []byte("abcd"), pushes[0])
	require.Equal(t, []byte("ef"), pushes[1])
}
