package accounting

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustOpReturnScript builds an OP_RETURN script pushing dataHex as a
// single direct push (assumes dataHex decodes to <= 75 bytes).
func mustOpReturnScript(t *testing.T, dataHex string) []byte {
	t.Helper()
	data, err := hex.DecodeString(dataHex)
	require.NoError(t, err)
	script := append([]byte{0x6a, byte(len(data))}, data...)
	return script
}
