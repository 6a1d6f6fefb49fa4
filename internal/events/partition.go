package events

import (
	"hash/fnv"
	"strconv"
)

// Partition maps a resource id onto one of n partitions. Every event for the
// same resource lands on the same partition.
func Partition(resourceID string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(resourceID))
	return int(h.Sum32() % uint32(n))
}

// StreamKey names the stream backing partition p.
func StreamKey(prefix string, p int) string {
	return prefix + ":" + strconv.Itoa(p)
}

// StreamKeys lists all partition streams for prefix.
func StreamKeys(prefix string, n int) []string {
	if n < 1 {
		n = 1
	}
	keys := make([]string, n)
	for i := range keys {
		keys[i] = StreamKey(prefix, i)
	}
	return keys
}
