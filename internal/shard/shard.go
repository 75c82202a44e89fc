// Package shard provides partition key generation for the DynamoDB backend.
package shard

import (
	"fmt"
	"hash/fnv"
)

// MaxShards is the largest supported shard count; shard ids are two hex digits.
const MaxShards = 256

// PartitionKey computes the partition key holding key within namespace.
// With numShards<=1, every key goes to shard "00".
// With numShards>1, keys are spread across shards by hash of key.
func PartitionKey(namespace, key string, numShards int) string {
	if numShards <= 1 {
		return fmt.Sprintf("%s#00", namespace)
	}
	if numShards > MaxShards {
		numShards = MaxShards
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	shard := h.Sum32() % uint32(numShards)
	return fmt.Sprintf("%s#%02x", namespace, shard)
}
