package dataset

import "sort"

// Group is the row indexes sharing one key
type Group struct {
	Key  string
	Rows []int
}

// Size returns the number of rows in the group
func (g Group) Size() int {
	return len(g.Rows)
}

// PartitionKeys splits row indexes by key, skipping invalid (null) keys.
// Groups come back in ascending key order.
func PartitionKeys(keys []string, valid []bool) []Group {
	index := make(map[string]int)
	var groups []Group
	for i, k := range keys {
		if !valid[i] {
			continue
		}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, Group{Key: k})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Partition groups the rows by the values of column; null keys are dropped
func (d *Dataset) Partition(column string) ([]Group, error) {
	keys, valid, err := d.Keys(column)
	if err != nil {
		return nil, err
	}
	return PartitionKeys(keys, valid), nil
}
