package accounting

import (
	"bytes"
	"encoding/hex"
	"unicode/utf8"

	"chain-lens/pkg/script"
)

// OpReturnPayload is the (data_hex, utf8_or_none, protocol) triple
// extracted from an OP_RETURN output (spec 4.6).
type OpReturnPayload struct {
	DataHex  string
	DataUtf8 *string
	Protocol string
}

var (
	omniPrefix = []byte{0x6f, 0x6d, 0x6e, 0x69}
	otsPrefix  = []byte{0x01, 0x09, 0xf9, 0x11, 0x02}
)

// ParseOpReturn concatenates every push operand following the leading
// OP_RETURN byte and classifies the resulting payload.
func ParseOpReturn(scriptPubkey []byte) OpReturnPayload {
	if len(scriptPubkey) == 0 || scriptPubkey[0] != 0x6a {
		return OpReturnPayload{DataHex: "", Protocol: "unknown"}
	}

	var data []byte
	for _, push := range script.Pushes(scriptPubkey[1:]) {
		data = append(data, push...)
	}

	payload := OpReturnPayload{DataHex: hex.EncodeToString(data)}

	if len(data) > 0 && utf8.Valid(data) {
		s := string(data)
		payload.DataUtf8 = &s
	}

	switch {
	case bytes.HasPrefix(data, omniPrefix):
		payload.Protocol = "omni"
	case bytes.HasPrefix(data, otsPrefix):
		payload.Protocol = "opentimestamps"
	default:
		payload.Protocol = "unknown"
	}

	return payload
}
