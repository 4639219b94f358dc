package util

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher returning the hex MD5 digest of value.
func Md5ThenHex(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashUUID derives a deterministic UUID from any JSON-marshalable value.
// Used to give quantization/Huffman table snapshots a stable content id
// across encode/decode log lines.
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hasher := md5.New()
	hasher.Write([]byte(raw))
	hash := hasher.Sum(nil)
	id, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return id.String()
}

// NewInstanceID returns a fresh random id; jpegxt's EncodeGray/DecodeGray
// log it with their start-of-call record.
func NewInstanceID() string {
	return uuid.NewString()
}
