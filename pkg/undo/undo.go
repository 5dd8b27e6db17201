// Package undo implements the undo-record decoder: Bitcoin Core's
// CVarInt compression scheme for amounts and scripts (spec section 4.5).
package undo

import (
	"chain-lens/internal/coreerr"
	"chain-lens/pkg/bytesreader"

	btcec "github.com/btcsuite/btcd/btcec/v2"
)

// Prevout is the (value, scriptPubKey) pair recovered for one spent
// input from the undo file.
type Prevout struct {
	ValueSats    int64
	ScriptPubkey []byte
}

// ReadCompressedVarInt reads Bitcoin Core's undo-file VarInt: each byte
// contributes its low 7 bits, high bit set means "more bytes follow",
// with an implicit +1 folded in between continuation bytes.
func ReadCompressedVarInt(r *bytesreader.Reader) (uint64, error) {
	var n uint64
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading compressed varint")
		}
		n = (n << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return n, nil
		}
		n++
	}
}

// DecompressAmount reverses Bitcoin Core's satoshi-amount compression
// (serialize.h DecompressAmount). Not a standard wire VarInt — see spec
// section 9.
func DecompressAmount(x uint64) int64 {
	if x == 0 {
		return 0
	}
	x--
	e := x % 10
	x /= 10
	var n uint64
	if e < 9 {
		d := x%9 + 1
		x /= 9
		n = x*10 + d
	} else {
		n = x + 1
		e = 9
	}
	for i := uint64(0); i < e; i++ {
		n *= 10
	}
	return int64(n)
}

// ReadRecord decodes one Coin entry: nCode (height*2+coinbase, plus an
// optional dummy nVersion when it's the last spend of its parent),
// then the compressed (amount, script) pair.
func ReadRecord(r *bytesreader.Reader) (Prevout, error) {
	nCode, err := ReadCompressedVarInt(r)
	if err != nil {
		return Prevout{}, err
	}
	nHeight := nCode >> 1

	if nHeight > 0 {
		if _, err := ReadCompressedVarInt(r); err != nil {
			return Prevout{}, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading dummy nVersion")
		}
	}

	compressedAmount, err := ReadCompressedVarInt(r)
	if err != nil {
		return Prevout{}, err
	}
	valueSats := DecompressAmount(compressedAmount)

	nSize, err := ReadCompressedVarInt(r)
	if err != nil {
		return Prevout{}, err
	}

	script, err := readCompressedScript(r, nSize)
	if err != nil {
		return Prevout{}, err
	}

	return Prevout{ValueSats: valueSats, ScriptPubkey: script}, nil
}

// readCompressedScript reconstructs scriptPubKey bytes from the nSize
// discriminator (spec section 4.5's CompressedScript table).
func readCompressedScript(r *bytesreader.Reader, nSize uint64) ([]byte, error) {
	switch nSize {
	case 0: // P2PKH: 20-byte hash
		hash, err := r.ReadBytes(20)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading p2pkh hash")
		}
		out := append([]byte{0x76, 0xa9, 0x14}, hash...)
		return append(out, 0x88, 0xac), nil

	case 1: // P2SH: 20-byte hash
		hash, err := r.ReadBytes(20)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading p2sh hash")
		}
		out := append([]byte{0xa9, 0x14}, hash...)
		return append(out, 0x87), nil

	case 2, 3: // compressed P2PK: prefix byte + 32-byte x-coordinate
		x, err := r.ReadBytes(32)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading p2pk x-coordinate")
		}
		key := append([]byte{byte(nSize)}, x...)
		out := append([]byte{0x21}, key...)
		return append(out, 0xac), nil

	case 4, 5: // uncompressed P2PK stored as a compressed x-coordinate
		x, err := r.ReadBytes(32)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading p2pk x-coordinate")
		}
		compressedKey := append([]byte{byte(nSize - 2)}, x...)
		pubKey, err := btcec.ParsePubKey(compressedKey)
		if err != nil {
			out := append([]byte{0x21}, compressedKey...)
			return append(out, 0xac), nil
		}
		uncompressed := pubKey.SerializeUncompressed()
		out := append([]byte{0x41}, uncompressed...)
		return append(out, 0xac), nil

	default: // raw script, length = nSize - 6
		if nSize < 6 {
			return nil, coreerr.New(coreerr.CodeInvalidUndo, "unrecognized script compression code")
		}
		raw, err := r.ReadBytes(int(nSize - 6))
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidUndo, err, "reading raw script")
		}
		return raw, nil
	}
}
