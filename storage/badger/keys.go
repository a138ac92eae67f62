package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/expatwise/retrieval/core"
)

// Key prefixes for different data types
const (
	cacheKVPrefix       = "sckv"
	cacheScorePrefix    = "scrs"
	cacheMemberPrefix   = "scrm"
	partitionInfoPrefix = "vspart"
	partitionDocPrefix  = "vsdoc"
)

// makeCacheKVKey generates a key for a cache key-value entry.
func makeCacheKVKey(key string) []byte {
	return []byte(cacheKVPrefix + ":" + key)
}

// makeCacheScoreKey generates a composite key for the recency index.
// Format: prefix:score:member
func makeCacheScoreKey(score int64, member string) []byte {
	prefix := cacheScorePrefix + ":"
	buf := make([]byte, len(prefix)+8+1+len(member))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(score))
	offset += 8
	buf[offset] = ':'
	offset++
	copy(buf[offset:], member)
	return buf
}

// makeCacheMemberKey generates the reverse-lookup key holding a member's
// current recency score.
func makeCacheMemberKey(member string) []byte {
	return []byte(cacheMemberPrefix + ":" + member)
}

// memberFromScoreKey extracts the member name from a recency score key.
func memberFromScoreKey(key []byte) string {
	prefixLen := len(cacheScorePrefix) + 1 + 8 + 1
	if len(key) <= prefixLen {
		return ""
	}
	return string(key[prefixLen:])
}

// makePartitionInfoKey generates a key for partition metadata.
func makePartitionInfoKey(name string) []byte {
	return []byte(partitionInfoPrefix + ":" + name)
}

// makeDocumentKey generates a key for a document within a partition.
// Format: prefix:partition:id
func makeDocumentKey(partition string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", partitionDocPrefix, partition)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentPrefix generates the iteration prefix for a partition's documents.
func makeDocumentPrefix(partition string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", partitionDocPrefix, partition))
}
