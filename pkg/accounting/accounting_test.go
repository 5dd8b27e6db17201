package accounting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbsoluteLocktimeType(t *testing.T) {
	require.Equal(t, "none", AbsoluteLocktimeType(0))
	require.Equal(t, "block_height", AbsoluteLocktimeType(500_000))
	require.Equal(t, "unix_timestamp", AbsoluteLocktimeType(500_000_001))
}

func TestParseRelativeTimelock_Disabled(t *testing.T) {
	tl := ParseRelativeTimelock(1 << 31)
	require.False(t, tl.Enabled)
}

func TestParseRelativeTimelock_Blocks(t *testing.T) {
	tl := ParseRelativeTimelock(10)
	require.True(t, tl.Enabled)
	require.Equal(t, "blocks", tl.Type)
	require.Equal(t, uint32(10), tl.Value)
}

func TestParseRelativeTimelock_Time(t *testing.T) {
	tl := ParseRelativeTimelock((1 << 22) | 2)
	require.True(t, tl.Enabled)
	require.Equal(t, "time", tl.Type)
	require.Equal(t, uint32(1024), tl.Value)
}

func TestIsRBFSignaling(t *testing.T) {
	require.True(t, IsRBFSignaling([]uint32{0xfffffffd, 0xffffffff}))
	require.False(t, IsRBFSignaling([]uint32{0xfffffffe, 0xffffffff}))
}

func TestWeightAndVBytes(t *testing.T) {
	w := Weight(100, 100)
	require.Equal(t, 400, w)
	require.Equal(t, 100, VBytes(w))
}

func TestFeeRateSatVB_Rounds(t *testing.T) {
	require.Equal(t, 1.5, FeeRateSatVB(150, 100))
}

func TestWarnings_DustAndHighFee(t *testing.T) {
	outputs := []OutputSummary{{ScriptType: "p2pkh", ValueSats: 100}}
	codes := Warnings(2_000_000, 1.0, false, outputs)
	require.Contains(t, codes, WarnHighFee)
	require.Contains(t, codes, WarnDustOutput)
}

func TestWarnings_OpReturnNeverDust(t *testing.T) {
	outputs := []OutputSummary{{ScriptType: "op_return", ValueSats: 0}}
	codes := Warnings(1000, 1.0, false, outputs)
	require.NotContains(t, codes, WarnDustOutput)
}

func TestParseOpReturn_OmniProtocol(t *testing.T) {
	payload := ParseOpReturn(mustOpReturnScript(t, "6f6d6e69"+"0000001f"))
	require.Equal(t, "omni", payload.Protocol)
}

func TestParseOpReturn_Utf8Text(t *testing.T) {
	payload := ParseOpReturn(mustOpReturnScript(t, "68656c6c6f"))
	require.NotNil(t, payload.DataUtf8)
	require.Equal(t, "hello", *payload.DataUtf8)
}

func TestParseOpReturn_NonUtf8HasNilText(t *testing.T) {
	payload := ParseOpReturn(mustOpReturnScript(t, "ff00"))
	require.Nil(t, payload.DataUtf8)
}
