package report

import (
	"encoding/hex"
	"fmt"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/bytesreader"
	"chain-lens/pkg/txdecoder"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// AnalyzeFixture decodes a raw transaction hex string and assembles its
// report, matching each non-coinbase input to the caller-supplied
// prevout list by (txid, vout) (spec section 6.1).
func AnalyzeFixture(fixture Fixture) (*TransactionOutput, error) {
	network := fixture.Network
	if network == "" {
		network = "mainnet"
	}

	rawBytes, err := hex.DecodeString(fixture.RawTx)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.CodeInvalidFixture, err, "raw_tx is not valid hex")
	}

	r := bytesreader.New(rawBytes, coreerr.CodeInvalidTx)
	tx, err := txdecoder.Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, coreerr.New(coreerr.CodeInvalidTx, "trailing bytes after transaction")
	}

	isCoinbase := len(tx.Inputs) == 1 && tx.Inputs[0].PrevOutpoint.IsCoinbase()

	prevouts, err := matchPrevouts(tx, fixture.Prevouts, isCoinbase)
	if err != nil {
		return nil, err
	}

	return assemble(tx, prevouts, network, isCoinbase), nil
}

// matchPrevouts pairs each input with its caller-declared prevout by
// (txid, vout). A coinbase transaction supplies none and needs none.
// Missing, duplicate, or extraneous prevouts are all INCONSISTENT_PREVOUTS.
func matchPrevouts(tx *txdecoder.Transaction, declared []PrevoutInput, isCoinbase bool) ([]resolvedPrevout, error) {
	if isCoinbase {
		return make([]resolvedPrevout, len(tx.Inputs)), nil
	}

	type key struct {
		hash chainhash.Hash
		vout uint32
	}

	byKey := make(map[key]PrevoutInput, len(declared))
	for _, p := range declared {
		hash, err := chainhash.NewHashFromStr(p.Txid)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInconsistentPrevouts, err, "prevout txid %q is not a valid hash", p.Txid)
		}
		k := key{hash: *hash, vout: p.Vout}
		if _, exists := byKey[k]; exists {
			return nil, coreerr.New(coreerr.CodeInconsistentPrevouts,
				fmt.Sprintf("duplicate prevout for %s:%d", p.Txid, p.Vout))
		}
		byKey[k] = p
	}

	resolved := make([]resolvedPrevout, len(tx.Inputs))
	used := make(map[key]bool, len(declared))
	for i, in := range tx.Inputs {
		k := key{hash: in.PrevOutpoint.Hash, vout: in.PrevOutpoint.Vout}
		p, ok := byKey[k]
		if !ok {
			return nil, coreerr.New(coreerr.CodeInconsistentPrevouts,
				fmt.Sprintf("missing prevout for input %d (%s:%d)", i, in.PrevOutpoint.Hash.String(), in.PrevOutpoint.Vout))
		}
		used[k] = true

		scriptBytes, err := hex.DecodeString(p.ScriptPubkeyHex)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.CodeInconsistentPrevouts, err, "prevout script_pubkey_hex is not valid hex")
		}
		resolved[i] = resolvedPrevout{ValueSats: p.ValueSats, ScriptPubkey: scriptBytes}
	}

	if len(used) != len(byKey) {
		return nil, coreerr.New(coreerr.CodeInconsistentPrevouts, "extraneous prevouts not referenced by any input")
	}

	return resolved, nil
}
