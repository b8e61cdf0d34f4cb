package analytics

import (
	"sort"

	"github.com/senzi/weibochat-insight/internal/dataset"
)

// DailyPoint is one calendar day of the daily trend view.
type DailyPoint struct {
	Date            string  `json:"date"`
	MessageCount    int     `json:"message_count"`
	RedpacketAmount float64 `json:"redpacket_amount"`
}

// DailyTrend groups messages by calendar date, ascending.
func DailyTrend(ds *dataset.Dataset) []DailyPoint {
	byDate := make(map[string]*DailyPoint)
	for _, rec := range ds.Records {
		p, ok := byDate[rec.Date]
		if !ok {
			p = &DailyPoint{Date: rec.Date}
			byDate[rec.Date] = p
		}
		p.MessageCount++
		if rec.RedpacketAmount != nil {
			p.RedpacketAmount += *rec.RedpacketAmount
		}
	}

	points := make([]DailyPoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// HeatmapPoint is one observed (hour, weekday, count) cell, serialized as a
// three-element array for the heatmap chart.
type HeatmapPoint [3]int

// HourlyHeatmap groups messages by (weekday, hour). Only observed
// combinations are emitted; the grid is sparse, not a dense 7x24 matrix.
func HourlyHeatmap(ds *dataset.Dataset) []HeatmapPoint {
	type cell struct{ weekday, hour int }
	counts := make(map[cell]int)
	for _, rec := range ds.Records {
		counts[cell{rec.Weekday, rec.Hour}]++
	}

	cells := make([]cell, 0, len(counts))
	for c := range counts {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].weekday != cells[j].weekday {
			return cells[i].weekday < cells[j].weekday
		}
		return cells[i].hour < cells[j].hour
	})

	points := make([]HeatmapPoint, 0, len(cells))
	for _, c := range cells {
		points = append(points, HeatmapPoint{c.hour, c.weekday, counts[c]})
	}
	return points
}

// UserTrendPoint is one day of a single user's activity.
type UserTrendPoint struct {
	Date         string `json:"date"`
	MessageCount int    `json:"message_count"`
}

// UserTrend groups one user's messages by date, ascending. Returns an empty
// slice when no records match.
func UserTrend(ds *dataset.Dataset, fromUID string) []UserTrendPoint {
	byDate := make(map[string]int)
	for _, rec := range ds.Records {
		if rec.FromUID == fromUID {
			byDate[rec.Date]++
		}
	}

	points := make([]UserTrendPoint, 0, len(byDate))
	for date, count := range byDate {
		points = append(points, UserTrendPoint{Date: date, MessageCount: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// SourceRatioPoint is one day of the web-vs-mobile split.
type SourceRatioPoint struct {
	Date        string  `json:"date"`
	Mobile      int     `json:"mobile"`
	Web         int     `json:"web"`
	Total       int     `json:"total"`
	WebRatio    float64 `json:"web_ratio"`
	MobileRatio float64 `json:"mobile_ratio"`
}

// SourceRatio pivots messages into per-date mobile/web counts with ratios,
// ascending by date. Ratios are 0 when a day has no messages at all.
func SourceRatio(ds *dataset.Dataset) []SourceRatioPoint {
	byDate := make(map[string]*SourceRatioPoint)
	for _, rec := range ds.Records {
		p, ok := byDate[rec.Date]
		if !ok {
			p = &SourceRatioPoint{Date: rec.Date}
			byDate[rec.Date] = p
		}
		if rec.IsWeb {
			p.Web++
		} else {
			p.Mobile++
		}
	}

	points := make([]SourceRatioPoint, 0, len(byDate))
	for _, p := range byDate {
		p.Total = p.Mobile + p.Web
		if p.Total > 0 {
			p.WebRatio = float64(p.Web) / float64(p.Total)
			p.MobileRatio = float64(p.Mobile) / float64(p.Total)
		}
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
