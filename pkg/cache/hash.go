package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 digest of data. Pipeline stages
// digest diagram structure and geometry with it, and the file backend
// reuses it to shard entries on disk.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a key of the form "stage:digest". Inputs are
// JSON-encoded before hashing so option structs contribute every field.
func hashKey(stage string, inputs ...any) string {
	data, _ := json.Marshal(inputs)
	return stage + ":" + Hash(data)
}
