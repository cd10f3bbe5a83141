package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data. Board and layout hashes are the
// hashes of their JSON encodings, so equal boards share cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

// hashKey returns "<kind>:<sha256>" over the JSON encoding of parts.
// Option structs encode with fixed field order, so the key is stable.
func hashKey(kind string, parts ...any) string {
	h, err := HashJSON(parts)
	if err != nil {
		// Key parts are strings and plain option structs.
		panic(err)
	}
	return kind + ":" + h
}
