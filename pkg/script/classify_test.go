package script

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestClassifyOutput(t *testing.T) {
	cases := []struct {
		name string
		hex  string
		want string
	}{
		{"p2pkh", "76a914" + "00112233445566778899aabbccddeeff00112233" + "88ac", "p2pkh"},
		{"p2sh", "a914" + "00112233445566778899aabbccddeeff00112233" + "87", "p2sh"},
		{"p2wpkh", "0014" + "00112233445566778899aabbccddeeff00112233", "p2wpkh"},
		{"p2wsh", "0020" + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff", "p2wsh"},
		{"p2tr", "5120" + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff", "p2tr"},
		{"op_return", "6a0461626364", "op_return"},
		{"unknown", "51", "unknown"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, ClassifyOutput(mustHex(t, c.hex)))
		})
	}
}

func TestClassifyInput_TaprootKeypath(t *testing.T) {
	prevout := mustHex(t, "5120"+"00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	witness := [][]byte{make([]byte, 64)}
	require.Equal(t, "p2tr_keypath", ClassifyInput(nil, witness, prevout))
}

func TestClassifyInput_TaprootScriptpath(t *testing.T) {
	prevout := mustHex(t, "5120"+"00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	witness := [][]byte{{0x01}, {0x02}, {0x03}}
	require.Equal(t, "p2tr_scriptpath", ClassifyInput(nil, witness, prevout))
}

func TestClassifyInput_P2SHWrappedWitnessPubkeyHash(t *testing.T) {
	prevout := mustHex(t, "a914"+"00112233445566778899aabbccddeeff00112233"+"87")
	redeem := mustHex(t, "0014"+"00112233445566778899aabbccddeeff00112233")
	scriptSig := append([]byte{byte(len(redeem))}, redeem...)
	require.Equal(t, "p2sh-p2wpkh", ClassifyInput(scriptSig, [][]byte{{0x01}, {0x02}}, prevout))
}

func TestClassifyInput_LegacyP2PKH(t *testing.T) {
	prevout := mustHex(t, "76a914"+"00112233445566778899aabbccddeeff00112233"+"88ac")
	require.Equal(t, "p2pkh", ClassifyInput([]byte{0x01, 0x02}, nil, prevout))
}

func TestIsPushOf_RejectsMultiElementScriptSig(t *testing.T) {
	scriptSig := mustHex(t, "0101" + "0102")
	require.False(t, isPushOf(scriptSig, func([]byte) bool { return true }))
}
