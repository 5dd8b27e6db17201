package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRawTx = "010000000111111111111111111111111111111111111111111111111111111111111111110000000000ffffffff010cdff505000000001976a914111111111111111111111111111111111111111188ac00000000"

const samplePrevoutTxid = "1111111111111111111111111111111111111111111111111111111111111111"

func sampleFixture() Fixture {
	return Fixture{
		Network: "mainnet",
		RawTx:   sampleRawTx,
		Prevouts: []PrevoutInput{
			{
				Txid:            samplePrevoutTxid,
				Vout:            0,
				ValueSats:       100000000,
				ScriptPubkeyHex: "76a914111111111111111111111111111111111111111188ac",
			},
		},
	}
}

func TestAnalyzeFixture_HappyPath(t *testing.T) {
	result, err := AnalyzeFixture(sampleFixture())
	require.NoError(t, err)
	require.True(t, result.OK)
	require.False(t, result.Segwit)
	require.Equal(t, int64(100000000), result.TotalInputSats)
	require.Equal(t, int64(99999500), result.TotalOutputSats)
	require.NotNil(t, result.FeeSats)
	require.Equal(t, int64(500), *result.FeeSats)
	require.Len(t, result.Vin, 1)
	require.Equal(t, "p2pkh", result.Vin[0].ScriptType)
	require.Equal(t, "p2pkh", result.Vout[0].ScriptType)
	require.NotNil(t, result.Vin[0].Address)
}

func TestAnalyzeFixture_MissingPrevoutIsInconsistent(t *testing.T) {
	fixture := sampleFixture()
	fixture.Prevouts = nil
	_, err := AnalyzeFixture(fixture)
	require.Error(t, err)
}

func TestAnalyzeFixture_DuplicatePrevoutIsInconsistent(t *testing.T) {
	fixture := sampleFixture()
	fixture.Prevouts = append(fixture.Prevouts, fixture.Prevouts[0])
	_, err := AnalyzeFixture(fixture)
	require.Error(t, err)
}

func TestAnalyzeFixture_ExtraneousPrevoutIsInconsistent(t *testing.T) {
	fixture := sampleFixture()
	extra := fixture.Prevouts[0]
	extra.Vout = 1
	fixture.Prevouts = append(fixture.Prevouts, extra)
	_, err := AnalyzeFixture(fixture)
	require.Error(t, err)
}

func TestAnalyzeFixture_InvalidHexRawTx(t *testing.T) {
	fixture := sampleFixture()
	fixture.RawTx = "not-hex"
	_, err := AnalyzeFixture(fixture)
	require.Error(t, err)
}
