package usecase

import (
	"testing"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2026, 5, day, hour, 0, 0, 0, time.UTC)
}

func TestReconstructHistory_NoLogs(t *testing.T) {
	points := ReconstructHistory(42, nil, at(10, 12))

	assert.Equal(t, []model.StockPoint{{Date: "2026-05-10", TotalStock: 42}}, points)
}

func TestReconstructHistory_EndOfDayTotals(t *testing.T) {
	// Chronologically: day 3 +10 -4, day 5 -1, day 8 +20. Total now 45.
	deltas := []model.StockLog{
		{ChangeAmount: 20, CreatedAt: at(8, 9)},
		{ChangeAmount: -1, CreatedAt: at(5, 17)},
		{ChangeAmount: -4, CreatedAt: at(3, 15)},
		{ChangeAmount: 10, CreatedAt: at(3, 8)},
	}

	points := ReconstructHistory(45, deltas, at(10, 12))

	assert.Equal(t, []model.StockPoint{
		{Date: "2026-05-02", TotalStock: 20},
		{Date: "2026-05-03", TotalStock: 26},
		{Date: "2026-05-05", TotalStock: 25},
		{Date: "2026-05-08", TotalStock: 45},
		{Date: "2026-05-10", TotalStock: 45},
	}, points)
}

func TestReconstructHistory_TodayCollapsesIntoLastLogDay(t *testing.T) {
	deltas := []model.StockLog{
		{ChangeAmount: -2, CreatedAt: at(10, 11)},
		{ChangeAmount: -3, CreatedAt: at(10, 9)},
	}

	points := ReconstructHistory(5, deltas, at(10, 12))

	assert.Equal(t, []model.StockPoint{
		{Date: "2026-05-09", TotalStock: 10},
		{Date: "2026-05-10", TotalStock: 5},
	}, points)
}

func TestReconstructHistory_ReplayReproducesCurrent(t *testing.T) {
	var deltas []model.StockLog
	start := 37
	running := start
	chronological := []int{5, -3, 12, -7, -7, 1, 30, -15}
	for i, d := range chronological {
		running += d
		deltas = append([]model.StockLog{{ChangeAmount: d, CreatedAt: at(1+i/2, 8+i)}}, deltas...)
	}
	current := running

	points := ReconstructHistory(current, deltas, at(20, 0))
	require.NotEmpty(t, points)

	replayed := points[0].TotalStock
	for i := len(deltas) - 1; i >= 0; i-- {
		replayed += deltas[i].ChangeAmount
	}
	assert.Equal(t, start, points[0].TotalStock)
	assert.Equal(t, current, replayed)
	assert.Equal(t, current, points[len(points)-1].TotalStock)
}

func TestReconstructHistory_LogAheadOfClock(t *testing.T) {
	deltas := []model.StockLog{{ChangeAmount: 4, CreatedAt: at(11, 1)}}

	points := ReconstructHistory(4, deltas, at(10, 23))

	assert.Equal(t, []model.StockPoint{
		{Date: "2026-05-10", TotalStock: 0},
		{Date: "2026-05-11", TotalStock: 4},
	}, points)
}
