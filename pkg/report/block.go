package report

import (
	"encoding/hex"
	"fmt"
	"math"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/blockdecoder"
)

// AnalyzeBlock decodes one blk*.dat/rev*.dat pair (already XOR-keyed) and
// assembles the full block report (spec section 6.4), iterating every
// block the file contains. strict controls merkle-mismatch handling per
// blockdecoder.DecodeBlocks.
func AnalyzeBlock(blkData, revData, xorKey []byte, strict bool) ([]*BlockOutput, error) {
	blocks, err := blockdecoder.DecodeBlocks(blkData, revData, xorKey, strict)
	if err != nil {
		return nil, err
	}

	outputs := make([]*BlockOutput, len(blocks))
	for i, b := range blocks {
		out, err := assembleBlock(b)
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

func assembleBlock(b *blockdecoder.Block) (*BlockOutput, error) {
	if len(b.Transactions) == 0 {
		return nil, coreerr.New(coreerr.CodeInvalidBlock, "block has no transactions")
	}

	coinbaseTx := b.Transactions[0]
	if len(coinbaseTx.Inputs) != 1 || !coinbaseTx.Inputs[0].PrevOutpoint.IsCoinbase() {
		return nil, coreerr.New(coreerr.CodeInvalidCoinbase, "first transaction is not a valid coinbase")
	}

	transactions := make([]TransactionOutput, len(b.Transactions))

	coinbaseReport := assemble(coinbaseTx, make([]resolvedPrevout, len(coinbaseTx.Inputs)), "mainnet", true)
	transactions[0] = *coinbaseReport

	var totalFees int64
	var totalWeight int
	var nonCoinbaseVbytes int
	scriptTypeSummary := make(map[string]int)

	tallyOutputTypes := func(tx TransactionOutput) {
		for _, o := range tx.Vout {
			scriptTypeSummary[o.ScriptType]++
		}
	}
	tallyOutputTypes(*coinbaseReport)
	totalWeight += coinbaseReport.Weight

	var coinbaseOutputSats int64
	for _, out := range coinbaseTx.Outputs {
		coinbaseOutputSats += out.Value
	}

	for i := 1; i < len(b.Transactions); i++ {
		tx := b.Transactions[i]
		prevouts := make([]resolvedPrevout, len(tx.Inputs))
		for j, p := range b.Prevouts[i-1] {
			prevouts[j] = resolvedPrevout{ValueSats: p.ValueSats, ScriptPubkey: p.ScriptPubkey}
		}

		report := assemble(tx, prevouts, "mainnet", false)
		transactions[i] = *report
		tallyOutputTypes(*report)

		totalWeight += report.Weight
		nonCoinbaseVbytes += report.Vbytes
		if report.FeeSats != nil {
			totalFees += *report.FeeSats
		}
	}

	// spec 4.7: fees / non-coinbase-vbytes, not a mean of per-transaction
	// rates — those are already independently rounded and weight each
	// transaction equally regardless of size.
	avgFeeRate := 0.0
	if nonCoinbaseVbytes > 0 {
		avgFeeRate = round2(float64(totalFees) / float64(nonCoinbaseVbytes))
	}

	return &BlockOutput{
		OK:   true,
		Mode: "block",
		BlockHeader: BlockHeader{
			Version:         b.Header.Version,
			PrevBlockHash:   b.Header.PrevBlockHash.String(),
			MerkleRoot:      b.Header.MerkleRoot.String(),
			MerkleRootValid: b.MerkleRootValid,
			Timestamp:       b.Header.Timestamp,
			Bits:            fmt.Sprintf("%08x", b.Header.Bits),
			Nonce:           b.Header.Nonce,
			BlockHash:       b.BlockHash.String(),
		},
		TxCount: len(b.Transactions),
		Coinbase: CoinbaseInfo{
			Bip34Height:       blockdecoder.ExtractBIP34Height(coinbaseTx.Inputs[0].ScriptSig),
			CoinbaseScriptHex: hex.EncodeToString(coinbaseTx.Inputs[0].ScriptSig),
			TotalOutputSats:   coinbaseOutputSats,
		},
		Transactions: transactions,
		BlockStats: BlockStats{
			TotalFeesSats:     totalFees,
			TotalWeight:       totalWeight,
			AvgFeeRateSatVb:   avgFeeRate,
			ScriptTypeSummary: scriptTypeSummary,
		},
	}, nil
}

// round2 mirrors accounting's rounding for the block-level average.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
