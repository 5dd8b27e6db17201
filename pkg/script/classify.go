package script

import "encoding/binary"

// ClassifyOutput tags a scriptPubKey with one of the closed set
// {p2pkh, p2sh, p2wpkh, p2wsh, p2tr, op_return, unknown} (spec 4.3).
func ClassifyOutput(b []byte) string {
	switch {
	case len(b) == 25 && b[0] == 0x76 && b[1] == 0xa9 && b[2] == 0x14 && b[23] == 0x88 && b[24] == 0xac:
		return "p2pkh"
	case len(b) == 23 && b[0] == 0xa9 && b[1] == 0x14 && b[22] == 0x87:
		return "p2sh"
	case len(b) == 22 && b[0] == 0x00 && b[1] == 0x14:
		return "p2wpkh"
	case len(b) == 34 && b[0] == 0x00 && b[1] == 0x20:
		return "p2wsh"
	case len(b) == 34 && b[0] == 0x51 && b[1] == 0x20:
		return "p2tr"
	case len(b) > 0 && b[0] == 0x6a:
		return "op_return"
	default:
		return "unknown"
	}
}

// ClassifyInput tags an input using the prevout's output type plus the
// shape of its witness/scriptSig (spec 4.3). p2pkh/p2wpkh/p2wsh prevouts
// classify the spending input directly from the prevout type; p2tr and
// p2sh additionally inspect the witness/scriptSig shape.
func ClassifyInput(scriptSig []byte, witness [][]byte, prevoutScript []byte) string {
	scriptSigEmpty := len(scriptSig) == 0
	prevoutType := ClassifyOutput(prevoutScript)

	switch prevoutType {
	case "p2pkh":
		return "p2pkh"
	case "p2wpkh":
		return "p2wpkh"
	case "p2wsh":
		return "p2wsh"
	case "p2tr":
		if scriptSigEmpty && len(witness) == 1 && (len(witness[0]) == 64 || len(witness[0]) == 65) {
			return "p2tr_keypath"
		}
		return "p2tr_scriptpath"
	case "p2sh":
		if isPushOf(scriptSig, func(d []byte) bool { return ClassifyOutput(d) == "p2wpkh" }) {
			return "p2sh-p2wpkh"
		}
		if isPushOf(scriptSig, func(d []byte) bool { return ClassifyOutput(d) == "p2wsh" }) {
			return "p2sh-p2wsh"
		}
		return "unknown"
	default:
		return "unknown"
	}
}

// isPushOf reports whether scriptSig consists of exactly one data push
// whose pushed bytes satisfy pred. Used to recognize P2SH-wrapped
// segwit redeem scripts: the scriptSig is a single push of the witness
// program.
func isPushOf(scriptSig []byte, pred func([]byte) bool) bool {
	if len(scriptSig) < 2 {
		return false
	}
	op := scriptSig[0]
	var n, hdr int
	switch {
	case op >= 0x01 && op <= 0x4b:
		n, hdr = int(op), 1
	case op == 0x4c:
		if len(scriptSig) < 2 {
			return false
		}
		n, hdr = int(scriptSig[1]), 2
	case op == 0x4d:
		if len(scriptSig) < 3 {
			return false
		}
		n, hdr = int(binary.LittleEndian.Uint16(scriptSig[1:3])), 3
	default:
		return false
	}
	if hdr+n != len(scriptSig) {
		return false
	}
	return pred(scriptSig[hdr : hdr+n])
}
