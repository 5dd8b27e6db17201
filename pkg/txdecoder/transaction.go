// Package txdecoder implements the transaction deserializer for both the
// legacy and segregated-witness wire formats (spec section 4.4).
package txdecoder

import (
	"bytes"
	"encoding/binary"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/bytesreader"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Outpoint identifies the previous output an input spends.
type Outpoint struct {
	Hash chainhash.Hash // internal (non-reversed) byte order
	Vout uint32
}

// IsCoinbase reports whether this outpoint is the all-zero,
// vout=0xFFFFFFFF null outpoint used by the coinbase input.
func (o Outpoint) IsCoinbase() bool {
	return o.Hash == (chainhash.Hash{}) && o.Vout == 0xffffffff
}

// Input is one transaction input as decoded off the wire.
type Input struct {
	PrevOutpoint Outpoint
	ScriptSig    []byte
	Sequence     uint32
	// Witness is nil for a non-SegWit transaction and a (possibly
	// zero-length-item-containing) stack for each SegWit input.
	Witness [][]byte
}

// Output is one transaction output as decoded off the wire.
type Output struct {
	Value    int64
	PkScript []byte
}

// Transaction is the decoded form of spec section 3's Transaction type,
// before accounting/policy derivation is layered on.
type Transaction struct {
	Version  int32
	Inputs   []Input
	Outputs  []Output
	Locktime uint32

	Segwit bool
	Txid   chainhash.Hash
	WTxid  chainhash.Hash // only meaningful when Segwit

	NonWitnessBytes int
	TotalBytes      int
}

// Weight and VBytes are computed by the accounting package; this package
// only exposes the byte-span lengths needed to compute them (spec 4.4).

// Decode parses one transaction starting at r's current cursor position,
// detecting the SegWit marker/flag by peeking bytes 5-6 of the encoding.
// It advances r past the transaction and returns the decoded value.
func Decode(r *bytesreader.Reader) (*Transaction, error) {
	start := r.Pos()

	version, err := r.ReadI32LE()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading version")
	}

	segwit := false
	if peek, err := r.Peek(2); err == nil && peek[0] == 0x00 && peek[1] == 0x01 {
		segwit = true
		if _, err := r.ReadBytes(2); err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "consuming segwit marker/flag")
		}
	}

	inputs, err := decodeInputs(r)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, coreerr.New(coreerr.CodeInvalidTx, "transaction has zero inputs")
	}

	outputs, err := decodeOutputs(r)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, coreerr.New(coreerr.CodeInvalidTx, "transaction has zero outputs")
	}

	if segwit {
		for i := range inputs {
			witness, err := decodeWitness(r)
			if err != nil {
				return nil, err
			}
			inputs[i].Witness = witness
		}
	}

	locktime, err := r.ReadU32LE()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading locktime")
	}

	end := r.Pos()
	fullBytes := r.Bytes()[start:end]

	nonWitnessBytes := encodeNonWitness(version, inputs, outputs, locktime)

	tx := &Transaction{
		Version:         version,
		Inputs:          inputs,
		Outputs:         outputs,
		Locktime:        locktime,
		Segwit:          segwit,
		Txid:            chainhash.DoubleHashH(nonWitnessBytes),
		NonWitnessBytes: len(nonWitnessBytes),
		TotalBytes:      end - start,
	}
	if segwit {
		tx.WTxid = chainhash.DoubleHashH(fullBytes)
	}
	return tx, nil
}

func decodeInputs(r *bytesreader.Reader) ([]Input, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading input count")
	}
	inputs := make([]Input, count)
	for i := range inputs {
		hashBytes, err := r.ReadBytes(32)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading input outpoint hash")
		}
		var hash chainhash.Hash
		copy(hash[:], hashBytes)

		vout, err := r.ReadU32LE()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading input outpoint index")
		}

		scriptLen, err := r.ReadVarInt()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading scriptSig length")
		}
		scriptSig, err := r.ReadBytes(int(scriptLen))
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading scriptSig")
		}

		sequence, err := r.ReadU32LE()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading sequence")
		}

		inputs[i] = Input{
			PrevOutpoint: Outpoint{Hash: hash, Vout: vout},
			ScriptSig:    append([]byte(nil), scriptSig...),
			Sequence:     sequence,
		}
	}
	return inputs, nil
}

func decodeOutputs(r *bytesreader.Reader) ([]Output, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading output count")
	}
	outputs := make([]Output, count)
	for i := range outputs {
		value, err := r.ReadU64LE()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading output value")
		}
		scriptLen, err := r.ReadVarInt()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading scriptPubKey length")
		}
		pkScript, err := r.ReadBytes(int(scriptLen))
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading scriptPubKey")
		}
		outputs[i] = Output{Value: int64(value), PkScript: append([]byte(nil), pkScript...)}
	}
	return outputs, nil
}

func decodeWitness(r *bytesreader.Reader) ([][]byte, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading witness item count")
	}
	items := make([][]byte, count)
	for i := range items {
		itemLen, err := r.ReadVarInt()
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading witness item length")
		}
		item, err := r.ReadBytes(int(itemLen))
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInvalidTx, err, "reading witness item")
		}
		items[i] = append([]byte(nil), item...)
	}
	return items, nil
}

// encodeNonWitness re-serializes the transaction without the SegWit
// marker/flag/witness data, used both to compute txid and to measure
// non_witness_bytes for weight accounting (spec 4.4, design note in
// spec section 9 on witness vs non-witness accounting).
func encodeNonWitness(version int32, inputs []Input, outputs []Output, locktime uint32) []byte {
	var buf bytes.Buffer

	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], uint32(version))
	buf.Write(v[:])

	writeVarInt(&buf, uint64(len(inputs)))
	for _, in := range inputs {
		buf.Write(in.PrevOutpoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.PrevOutpoint.Vout)
		buf.Write(idx[:])
		writeVarInt(&buf, uint64(len(in.ScriptSig)))
		buf.Write(in.ScriptSig)
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf.Write(seq[:])
	}

	writeVarInt(&buf, uint64(len(outputs)))
	for _, out := range outputs {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(out.Value))
		buf.Write(val[:])
		writeVarInt(&buf, uint64(len(out.PkScript)))
		buf.Write(out.PkScript)
	}

	var lt [4]byte
	binary.LittleEndian.PutUint32(lt[:], locktime)
	buf.Write(lt[:])

	return buf.Bytes()
}

func writeVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	default:
		buf.WriteByte(0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	}
}
