package pipeline

import "fmt"

// Default batch when neither --ids nor a range is given.
const (
	DefaultStartID = 1
	DefaultEndID   = 20
)

// BuildIDList resolves the CLI id selection into the ordered list of
// ids to process. Explicit ids win over a range; with neither, the
// default 1..20 batch is used.
func BuildIDList(ids []int, startID, endID int) ([]int, error) {
	if len(ids) > 0 {
		if startID != 0 || endID != 0 {
			return nil, fmt.Errorf("cannot combine --ids with --start-id/--end-id")
		}
		for _, id := range ids {
			if id <= 0 {
				return nil, fmt.Errorf("invalid pokemon id %d", id)
			}
		}
		return ids, nil
	}

	if startID == 0 && endID == 0 {
		startID, endID = DefaultStartID, DefaultEndID
	}
	if startID <= 0 {
		return nil, fmt.Errorf("--start-id must be positive, got %d", startID)
	}
	if endID == 0 {
		endID = startID
	}
	if endID < startID {
		return nil, fmt.Errorf("--end-id %d is before --start-id %d", endID, startID)
	}

	out := make([]int, 0, endID-startID+1)
	for id := startID; id <= endID; id++ {
		out = append(out, id)
	}
	return out, nil
}
