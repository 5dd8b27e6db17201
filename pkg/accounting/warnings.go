package accounting

// OutputSummary is the minimal view of an output warnings need: its
// script type tag and value. Keeping this local (rather than depending
// on the report package's JSON types) keeps accounting a leaf package.
type OutputSummary struct {
	ScriptType string
	ValueSats  int64
}

const (
	WarnHighFee             = "HIGH_FEE"
	WarnDustOutput          = "DUST_OUTPUT"
	WarnUnknownOutputScript = "UNKNOWN_OUTPUT_SCRIPT"
	WarnRBFSignaling        = "RBF_SIGNALING"

	dustThresholdSats = 546
	highFeeSatsThresh = 1_000_000
	highFeeRateThresh = 200.0
)

// Warnings generates the non-fatal warning codes for a transaction
// (spec 4.6). Order is not significant.
func Warnings(feeSats int64, feeRateSatVB float64, rbfSignaling bool, outputs []OutputSummary) []string {
	var warnings []string

	if feeSats > highFeeSatsThresh || feeRateSatVB > highFeeRateThresh {
		warnings = append(warnings, WarnHighFee)
	}

	for _, o := range outputs {
		if o.ScriptType != "op_return" && o.ValueSats < dustThresholdSats {
			warnings = append(warnings, WarnDustOutput)
			break
		}
	}

	for _, o := range outputs {
		if o.ScriptType == "unknown" {
			warnings = append(warnings, WarnUnknownOutputScript)
			break
		}
	}

	if rbfSignaling {
		warnings = append(warnings, WarnRBFSignaling)
	}

	return warnings
}
