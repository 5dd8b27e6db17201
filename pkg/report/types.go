// Package report assembles the JSON schema of spec section 6 from the
// decoder, undo, and accounting layers.
package report

// TransactionOutput is the schema of spec section 6.3.
type TransactionOutput struct {
	OK              bool           `json:"ok"`
	Network         string         `json:"network,omitempty"`
	Segwit          bool           `json:"segwit"`
	Txid            string         `json:"txid,omitempty"`
	Wtxid           *string        `json:"wtxid"`
	Version         int32          `json:"version"`
	Locktime        uint32         `json:"locktime"`
	SizeBytes       int            `json:"size_bytes"`
	Weight          int            `json:"weight"`
	Vbytes          int            `json:"vbytes"`
	TotalInputSats  int64          `json:"total_input_sats"`
	TotalOutputSats int64          `json:"total_output_sats"`
	FeeSats         *int64         `json:"fee_sats,omitempty"`
	FeeRateSatVb    *float64       `json:"fee_rate_sat_vb,omitempty"`
	RbfSignaling    bool           `json:"rbf_signaling"`
	LocktimeType    string         `json:"locktime_type"`
	LocktimeValue   uint32         `json:"locktime_value"`
	SegwitSavings   *SegwitSavings `json:"segwit_savings"`
	Vin             []Input        `json:"vin"`
	Vout            []Output       `json:"vout"`
	Warnings        []Warning      `json:"warnings"`
	Error           *ErrorInfo     `json:"error,omitempty"`
}

// Input is the schema of a vin[] entry (spec 6.3).
type Input struct {
	Txid             string           `json:"txid"`
	Vout             uint32           `json:"vout"`
	Sequence         uint32           `json:"sequence"`
	ScriptSigHex     string           `json:"script_sig_hex"`
	ScriptAsm        string           `json:"script_asm"`
	Witness          []string         `json:"witness"`
	WitnessScriptAsm *string          `json:"witness_script_asm,omitempty"`
	ScriptType       string           `json:"script_type"`
	Address          *string          `json:"address"`
	Prevout          Prevout          `json:"prevout"`
	RelativeTimelock RelativeTimelock `json:"relative_timelock"`
}

// Output is the schema of a vout[] entry (spec 6.3).
type Output struct {
	N                int     `json:"n"`
	ValueSats        int64   `json:"value_sats"`
	ScriptPubkeyHex  string  `json:"script_pubkey_hex"`
	ScriptAsm        string  `json:"script_asm"`
	ScriptType       string  `json:"script_type"`
	Address          *string `json:"address"`
	OpReturnDataHex  *string `json:"op_return_data_hex,omitempty"`
	OpReturnDataUtf8 *string `json:"op_return_data_utf8,omitempty"`
	OpReturnProtocol string  `json:"op_return_protocol,omitempty"`
}

// Prevout is the previous output being spent by an input.
type Prevout struct {
	ValueSats       int64  `json:"value_sats"`
	ScriptPubkeyHex string `json:"script_pubkey_hex"`
}

// RelativeTimelock is the BIP68 decode for one input.
type RelativeTimelock struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type,omitempty"`
	Value   uint32 `json:"value,omitempty"`
}

// SegwitSavings is the witness-discount breakdown (spec 4.6).
type SegwitSavings struct {
	WitnessBytes    int     `json:"witness_bytes"`
	NonWitnessBytes int     `json:"non_witness_bytes"`
	TotalBytes      int     `json:"total_bytes"`
	WeightActual    int     `json:"weight_actual"`
	WeightIfLegacy  int     `json:"weight_if_legacy"`
	SavingsPct      float64 `json:"savings_pct"`
}

// Warning is one entry of warnings[].
type Warning struct {
	Code string `json:"code"`
}

// ErrorInfo is the error envelope of spec section 6.5.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Fixture is the single-transaction request body of spec section 6.1.
type Fixture struct {
	Network  string         `json:"network" binding:"omitempty,oneof=mainnet"`
	RawTx    string         `json:"raw_tx" binding:"required"`
	Prevouts []PrevoutInput `json:"prevouts"`
}

// PrevoutInput is one entry of Fixture.Prevouts.
type PrevoutInput struct {
	Txid            string `json:"txid" binding:"required"`
	Vout            uint32 `json:"vout"`
	ValueSats       int64  `json:"value_sats"`
	ScriptPubkeyHex string `json:"script_pubkey_hex" binding:"required"`
}

// BlockOutput is the schema of spec section 6.4.
type BlockOutput struct {
	OK           bool                `json:"ok"`
	Mode         string              `json:"mode"`
	BlockHeader  BlockHeader         `json:"block_header"`
	TxCount      int                 `json:"tx_count"`
	Coinbase     CoinbaseInfo        `json:"coinbase"`
	Transactions []TransactionOutput `json:"transactions"`
	BlockStats   BlockStats          `json:"block_stats"`
	Error        *ErrorInfo          `json:"error,omitempty"`
}

// BlockHeader is the schema of block_header (spec 6.4).
type BlockHeader struct {
	Version         int32  `json:"version"`
	PrevBlockHash   string `json:"prev_block_hash"`
	MerkleRoot      string `json:"merkle_root"`
	MerkleRootValid bool   `json:"merkle_root_valid"`
	Timestamp       uint32 `json:"timestamp"`
	Bits            string `json:"bits"`
	Nonce           uint32 `json:"nonce"`
	BlockHash       string `json:"block_hash"`
}

// CoinbaseInfo is the schema of coinbase (spec 6.4).
type CoinbaseInfo struct {
	Bip34Height       int64  `json:"bip34_height"`
	CoinbaseScriptHex string `json:"coinbase_script_hex"`
	TotalOutputSats   int64  `json:"total_output_sats"`
}

// BlockStats is the schema of block_stats (spec 6.4).
type BlockStats struct {
	TotalFeesSats     int64          `json:"total_fees_sats"`
	TotalWeight       int            `json:"total_weight"`
	AvgFeeRateSatVb   float64        `json:"avg_fee_rate_sat_vb"`
	ScriptTypeSummary map[string]int `json:"script_type_summary"`
}
