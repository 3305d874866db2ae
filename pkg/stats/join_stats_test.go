package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinStatsMerge(t *testing.T) {
	a := NewJoinStats()
	b := NewJoinStats()
	a.LeftRecords.Tick(2)
	b.LeftRecords.Tick(3)
	b.CleanupFirings.Tick(1)
	a.Merge(b)
	assert.Equal(t, uint64(5), a.LeftRecords.GetCount())
	assert.Equal(t, uint64(1), a.CleanupFirings.GetCount())
	assert.Zero(t, a.EmittedRows.GetCount())
}
