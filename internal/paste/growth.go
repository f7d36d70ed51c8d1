package paste

import (
	"strconv"

	"github.com/zjrosen/gridclip/internal/grid"
)

// GrowthPlan lists the rows a paste must append.
type GrowthPlan struct {
	RowsToAdd int
	// Seeds are the ids of the appended records, in append order.
	Seeds []string
}

// PlanGrowth returns the rows needed so dest fits in a grid of
// currentRowCount rows. Each seed is the target row index, which is the
// current count plus the number of records already planned before it.
func PlanGrowth(currentRowCount int, dest grid.Range) GrowthPlan {
	n := max(0, dest.ToRow+1-currentRowCount)
	plan := GrowthPlan{RowsToAdd: n, Seeds: make([]string, n)}
	for k := range n {
		plan.Seeds[k] = strconv.Itoa(currentRowCount + k)
	}
	return plan
}

// Records builds one empty record per seed.
func (p GrowthPlan) Records() []grid.Record {
	recs := make([]grid.Record, len(p.Seeds))
	for i, id := range p.Seeds {
		recs[i] = grid.Record{grid.IDField: id}
	}
	return recs
}
