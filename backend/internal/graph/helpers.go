package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// recordCount reads an integer column such as count(n). Missing keys, nulls and
// non-integer values read as 0.
func recordCount(record *neo4j.Record, key string) int64 {
	n, isNil, err := neo4j.GetRecordValue[int64](record, key)
	if err != nil || isNil {
		return 0
	}
	return n
}
