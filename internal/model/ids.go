package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DocumentID computes the content-derived identifier: the first 16 hex
// characters of sha256(content). Two documents with equal content share
// the same id.
func DocumentID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkID computes "{document_id}_chunk_{index}".
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// ContentHash16 hashes arbitrary text to a 16-hex-char digest, used by
// code-block duplicate detection.
func ContentHash16(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}
