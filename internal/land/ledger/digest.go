package ledger

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// GenesisHash is the fixed previous-hash sentinel of the first block. It is
// part of the persisted format; VerifyIntegrity on any copy of the chain
// depends on this exact value.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Digest computes the block hash over the previous hash concatenated with the
// canonical payload bytes. Identical inputs always yield identical output.
func Digest(previousHash string, canonical []byte) string {
	buf := make([]byte, 0, len(previousHash)+len(canonical))
	buf = append(buf, previousHash...)
	buf = append(buf, canonical...)
	return chainhash.DoubleHashH(buf).String()
}
