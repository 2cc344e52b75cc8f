package usecase

import (
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
)

const dayLayout = "2006-01-02"

func dayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ReconstructHistory derives the total-stock series from the current total and
// every delta ordered newest first. Each calendar day keeps its end-of-day
// total. The first point holds the total before the oldest delta and is dated
// the day before it, so replaying every delta from it lands on current.
// Collapsing the literal "total before each entry" per day would drop the
// last change of every day from the series; end-of-day totals keep it exact.
func ReconstructHistory(current int, deltas []model.StockLog, now time.Time) []model.StockPoint {
	today := dayOf(now)
	if len(deltas) == 0 {
		return []model.StockPoint{{Date: today, TotalStock: current}}
	}

	series := make([]model.StockPoint, 0, len(deltas)+2)
	if today >= dayOf(deltas[0].CreatedAt) {
		series = append(series, model.StockPoint{Date: today, TotalStock: current})
	}

	running := current
	for _, l := range deltas {
		series = append(series, model.StockPoint{Date: dayOf(l.CreatedAt), TotalStock: running})
		running -= l.ChangeAmount
	}
	oldest := deltas[len(deltas)-1].CreatedAt
	series = append(series, model.StockPoint{Date: dayOf(oldest.AddDate(0, 0, -1)), TotalStock: running})

	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}

	points := make([]model.StockPoint, 0, len(series))
	for _, p := range series {
		if n := len(points); n > 0 && points[n-1].Date == p.Date {
			points[n-1] = p
			continue
		}
		points = append(points, p)
	}
	return points
}
