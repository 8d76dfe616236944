package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   \t\n"))
	assert.False(t, IsBlank("hi"))
	assert.False(t, IsBlank("  x  "))
}

func TestSortByCreated(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
	}

	sorted := SortByCreated(msgs)

	require.Len(t, sorted, 3)
	assert.Equal(t, "a", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
	assert.Equal(t, "c", sorted[2].ID)

	// input untouched
	assert.Equal(t, "c", msgs[0].ID)
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	groups := GroupByDay([]Message{
		{ID: "a", CreatedAt: day1},
		{ID: "b", CreatedAt: day1.Add(time.Hour)},
		{ID: "c", CreatedAt: day2},
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Messages, 2)
	assert.Len(t, groups[1].Messages, 1)
	assert.Equal(t, "c", groups[1].Messages[0].ID)

	assert.Empty(t, GroupByDay(nil))
}
