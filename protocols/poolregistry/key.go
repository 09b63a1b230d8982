package poolregistry

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PoolKey derives the identity of a pool from its variant, pair and fee.
// Tokens are hashed in ascending byte order, so the key does not depend on
// which token is passed first.
func PoolKey(variant Variant, tokenOne, tokenTwo common.Address, feeBps uint16) common.Hash {
	lo, hi := tokenOne, tokenTwo
	if bytes.Compare(lo.Bytes(), hi.Bytes()) > 0 {
		lo, hi = hi, lo
	}
	var fee [2]byte
	binary.BigEndian.PutUint16(fee[:], feeBps)
	return crypto.Keccak256Hash([]byte{byte(variant)}, lo.Bytes(), hi.Bytes(), fee[:])
}
