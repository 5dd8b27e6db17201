package bytesreader

import (
	"testing"

	"chain-lens/internal/coreerr"

	"github.com/stretchr/testify/require"
)

func TestReadVarInt_DirectForm(t *testing.T) {
	r := New([]byte{0xfc}, coreerr.CodeInvalidTx)
	v, err := r.ReadVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(0xfc), v)
}

func TestReadVarInt_U16Form(t *testing.T) {
	r := New([]byte{0xfd, 0xfd, 0x00}, coreerr.CodeInvalidTx)
	v, err := r.ReadVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(0xfd), v)
}

func TestReadVarInt_RejectsNonCanonical(t *testing.T) {
	r := New([]byte{0xfd, 0xfc, 0x00}, coreerr.CodeInvalidTx)
	_, err := r.ReadVarInt()
	require.Error(t, err)
	require.Equal(t, coreerr.CodeInvalidTx, coreerr.CodeOf(err))
}

func TestReadVarInt_U64Form(t *testing.T) {
	r := New([]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, coreerr.CodeInvalidTx)
	v, err := r.ReadVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(0x100000000), v)
}

func TestReadBytes_ShortRead(t *testing.T) {
	r := New([]byte{0x01, 0x02}, coreerr.CodeInvalidBlock)
	_, err := r.ReadBytes(4)
	require.Error(t, err)
	require.Equal(t, coreerr.CodeInvalidBlock, coreerr.CodeOf(err))
}

func TestReadU32LE(t *testing.T) {
	r := New([]byte{0x01, 0x00, 0x00, 0x00}, coreerr.CodeInvalidTx)
	v, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(1), v)
}

func TestPeek_DoesNotAdvance(t *testing.T) {
	r := New([]byte{0xaa, 0xbb}, coreerr.CodeInvalidTx)
	_, err := r.Peek(2)
	require.NoError(t, err)
	require.Equal(t, 0, r.Pos())
	require.Equal(t, 2, r.Remaining())
}
