package crypto

import "encoding/binary"

// DeriveLeaseID computes the id of a Lease action per the protocol's
// fixed formula: blake2b256(tx_id || u32_le(nonce) || recipient_bytes
// || i64_be(amount)).
func DeriveLeaseID(txID Digest, nonce int64, recipientBytes []byte, amount int64) (Digest, error) {
	buf := make([]byte, 0, DigestSize+4+len(recipientBytes)+8)
	buf = append(buf, txID.Bytes()...)
	var nonceBytes [4]byte
	binary.LittleEndian.PutUint32(nonceBytes[:], uint32(nonce))
	buf = append(buf, nonceBytes[:]...)
	buf = append(buf, recipientBytes...)
	var amountBytes [8]byte
	binary.BigEndian.PutUint64(amountBytes[:], uint64(amount))
	buf = append(buf, amountBytes[:]...)
	return SecureHash(buf)
}

// DeriveAssetID computes the id of an Issue action: blake2b256(tx_id ||
// u64_be(nonce)). Action-issued assets have no nested inner
// transaction to hash, so this follows the same big-endian-nonce
// convention DeriveLeaseID uses for the rest of its fields.
func DeriveAssetID(txID Digest, nonce int64) (Digest, error) {
	buf := make([]byte, 0, DigestSize+8)
	buf = append(buf, txID.Bytes()...)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], uint64(nonce))
	buf = append(buf, nonceBytes[:]...)
	return SecureHash(buf)
}
