package script

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// AddressFromScript derives the canonical address for a scriptPubKey, or
// nil when the type carries none (op_return, unknown). Only mainnet is
// supported for address encoding; any other network value still uses
// mainnet params, matching the engine's mainnet-only non-goal (spec §1).
func AddressFromScript(scriptPubkey []byte) *string {
	params := &chaincfg.MainNetParams

	var addr btcutil.Address
	var err error

	switch ClassifyOutput(scriptPubkey) {
	case "p2pkh":
		if len(scriptPubkey) != 25 {
			return nil
		}
		addr, err = btcutil.NewAddressPubKeyHash(scriptPubkey[3:23], params)
	case "p2sh":
		if len(scriptPubkey) != 23 {
			return nil
		}
		addr, err = btcutil.NewAddressScriptHashFromHash(scriptPubkey[2:22], params)
	case "p2wpkh":
		if len(scriptPubkey) != 22 {
			return nil
		}
		addr, err = btcutil.NewAddressWitnessPubKeyHash(scriptPubkey[2:22], params)
	case "p2wsh":
		if len(scriptPubkey) != 34 {
			return nil
		}
		addr, err = btcutil.NewAddressWitnessScriptHash(scriptPubkey[2:34], params)
	case "p2tr":
		if len(scriptPubkey) != 34 {
			return nil
		}
		addr, err = btcutil.NewAddressTaproot(scriptPubkey[2:34], params)
	default:
		return nil
	}

	if err != nil {
		return nil
	}
	s := addr.EncodeAddress()
	return &s
}
