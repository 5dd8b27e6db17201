package report

import (
	"encoding/hex"

	"chain-lens/pkg/accounting"
	"chain-lens/pkg/script"
	"chain-lens/pkg/txdecoder"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// resolvedPrevout is the (value, scriptPubKey) pair an input spends,
// already matched to that input by the caller (fixture lookup or
// positional undo pairing).
type resolvedPrevout struct {
	ValueSats    int64
	ScriptPubkey []byte
}

// assemble builds the schema-6.3 report for one decoded transaction.
// prevouts[i] corresponds to tx.Inputs[i]; coinbase inputs pass a
// zero-value resolvedPrevout (no prevout exists for them).
func assemble(tx *txdecoder.Transaction, prevouts []resolvedPrevout, network string, isCoinbase bool) *TransactionOutput {
	weight := accounting.Weight(tx.NonWitnessBytes, tx.TotalBytes)
	vbytes := accounting.VBytes(weight)

	vin := make([]Input, len(tx.Inputs))
	var totalInputSats int64
	sequences := make([]uint32, len(tx.Inputs))

	for i, in := range tx.Inputs {
		sequences[i] = in.Sequence
		prevout := prevouts[i]
		totalInputSats += prevout.ValueSats

		witnessHex := make([]string, len(in.Witness))
		for j, item := range in.Witness {
			witnessHex[j] = hex.EncodeToString(item)
		}

		scriptType := script.ClassifyInput(in.ScriptSig, in.Witness, prevout.ScriptPubkey)

		var witnessScriptAsm *string
		if (scriptType == "p2wsh" || scriptType == "p2sh-p2wsh") && len(in.Witness) > 0 {
			last := in.Witness[len(in.Witness)-1]
			if len(last) > 0 {
				asm := script.Disassemble(last)
				witnessScriptAsm = &asm
			}
		}

		tl := accounting.ParseRelativeTimelock(in.Sequence)
		relTimelock := RelativeTimelock{Enabled: tl.Enabled}
		if tl.Enabled {
			relTimelock.Type = tl.Type
			relTimelock.Value = tl.Value
		}

		txidStr := in.PrevOutpoint.Hash.String()
		if in.PrevOutpoint.IsCoinbase() {
			txidStr = chainhash.Hash{}.String()
		}

		vin[i] = Input{
			Txid:             txidStr,
			Vout:             in.PrevOutpoint.Vout,
			Sequence:         in.Sequence,
			ScriptSigHex:     hex.EncodeToString(in.ScriptSig),
			ScriptAsm:        script.Disassemble(in.ScriptSig),
			Witness:          witnessHex,
			WitnessScriptAsm: witnessScriptAsm,
			ScriptType:       scriptType,
			Address:          script.AddressFromScript(prevout.ScriptPubkey),
			Prevout: Prevout{
				ValueSats:       prevout.ValueSats,
				ScriptPubkeyHex: hex.EncodeToString(prevout.ScriptPubkey),
			},
			RelativeTimelock: relTimelock,
		}
	}

	vout := make([]Output, len(tx.Outputs))
	var totalOutputSats int64
	var outputSummaries []accounting.OutputSummary

	for i, out := range tx.Outputs {
		totalOutputSats += out.Value
		scriptType := script.ClassifyOutput(out.PkScript)

		o := Output{
			N:               i,
			ValueSats:       out.Value,
			ScriptPubkeyHex: hex.EncodeToString(out.PkScript),
			ScriptAsm:       script.Disassemble(out.PkScript),
			ScriptType:      scriptType,
			Address:         script.AddressFromScript(out.PkScript),
		}
		if scriptType == "op_return" {
			payload := accounting.ParseOpReturn(out.PkScript)
			dataHex := payload.DataHex
			o.OpReturnDataHex = &dataHex
			o.OpReturnDataUtf8 = payload.DataUtf8
			o.OpReturnProtocol = payload.Protocol
		}
		vout[i] = o
		outputSummaries = append(outputSummaries, accounting.OutputSummary{ScriptType: scriptType, ValueSats: out.Value})
	}

	rbf := accounting.IsRBFSignaling(sequences)

	result := &TransactionOutput{
		OK:              true,
		Network:         network,
		Segwit:          tx.Segwit,
		Txid:            tx.Txid.String(),
		Version:         tx.Version,
		Locktime:        tx.Locktime,
		SizeBytes:       tx.TotalBytes,
		Weight:          weight,
		Vbytes:          vbytes,
		TotalInputSats:  totalInputSats,
		TotalOutputSats: totalOutputSats,
		RbfSignaling:    rbf,
		LocktimeType:    accounting.AbsoluteLocktimeType(tx.Locktime),
		LocktimeValue:   tx.Locktime,
		Vin:             vin,
		Vout:            vout,
		Warnings:        []Warning{},
	}

	if tx.Segwit {
		wtxid := tx.WTxid.String()
		result.Wtxid = &wtxid
		savings := accounting.ComputeSegwitSavings(tx.NonWitnessBytes, tx.TotalBytes, weight)
		result.SegwitSavings = &SegwitSavings{
			WitnessBytes:    savings.WitnessBytes,
			NonWitnessBytes: savings.NonWitnessBytes,
			TotalBytes:      savings.TotalBytes,
			WeightActual:    savings.WeightActual,
			WeightIfLegacy:  savings.WeightIfLegacy,
			SavingsPct:      savings.SavingsPct,
		}
	}

	if !isCoinbase {
		fee := accounting.FeeSats(totalInputSats, totalOutputSats)
		feeRate := accounting.FeeRateSatVB(fee, vbytes)
		result.FeeSats = &fee
		result.FeeRateSatVb = &feeRate

		for _, code := range accounting.Warnings(fee, feeRate, rbf, outputSummaries) {
			result.Warnings = append(result.Warnings, Warning{Code: code})
		}
	} else if rbf {
		// RBF signaling is still meaningful on a coinbase's own
		// sequence field even though it has no fee to weigh.
		result.Warnings = append(result.Warnings, Warning{Code: accounting.WarnRBFSignaling})
	}

	return result
}
