// Package analytics computes the aggregation views served by the dashboard.
// Every function is pure with respect to the dataset; caching is the caller's
// concern.
package analytics

import (
	"math"

	"github.com/senzi/weibochat-insight/internal/dataset"
)

// SummaryStats is the overall statistics view.
type SummaryStats struct {
	TotalMessages        int     `json:"total_messages"`
	TotalUsers           int     `json:"total_users"`
	TotalRedpacketAmount float64 `json:"total_redpacket_amount"`
	AvgTokenLength       float64 `json:"avg_token_length"`
	AvgContentLength     float64 `json:"avg_content_length"`
}

// Summary computes totals and text-message averages. Averages are 0, never
// NaN, when there are no text records.
func Summary(ds *dataset.Dataset) SummaryStats {
	users := make(map[string]struct{})
	var redTotal float64
	var tokenSum, contentSum, textCount int

	for _, rec := range ds.Records {
		users[rec.FromUID] = struct{}{}
		if rec.IsRedpacket && rec.RedpacketAmount != nil {
			redTotal += *rec.RedpacketAmount
		}
		if rec.IsText {
			textCount++
			tokenSum += rec.TokenCount
			contentSum += rec.ContentLen
		}
	}

	stats := SummaryStats{
		TotalMessages:        len(ds.Records),
		TotalUsers:           len(users),
		TotalRedpacketAmount: redTotal,
	}
	if textCount > 0 {
		stats.AvgTokenLength = round2(float64(tokenSum) / float64(textCount))
		stats.AvgContentLength = round2(float64(contentSum) / float64(textCount))
	}
	return stats
}

// MessageTypeCounts counts the three independent message flags. A record may
// count toward several of them, or none.
type MessageTypeCounts struct {
	Text      int `json:"text"`
	Image     int `json:"image"`
	Redpacket int `json:"redpacket"`
}

// MessageTypePercentages expresses each count against the sum of the three.
type MessageTypePercentages struct {
	Text      float64 `json:"text"`
	Image     float64 `json:"image"`
	Redpacket float64 `json:"redpacket"`
}

// MessageTypeStats is the message-type mix view.
type MessageTypeStats struct {
	Counts      MessageTypeCounts      `json:"counts"`
	Percentages MessageTypePercentages `json:"percentages"`
}

// MessageTypes computes the type mix. All percentages are 0 when the counts
// sum to 0.
func MessageTypes(ds *dataset.Dataset) MessageTypeStats {
	var counts MessageTypeCounts
	for _, rec := range ds.Records {
		if rec.IsText {
			counts.Text++
		}
		if rec.IsImage {
			counts.Image++
		}
		if rec.IsRedpacket {
			counts.Redpacket++
		}
	}

	stats := MessageTypeStats{Counts: counts}
	total := counts.Text + counts.Image + counts.Redpacket
	if total > 0 {
		stats.Percentages = MessageTypePercentages{
			Text:      round2(float64(counts.Text) / float64(total) * 100),
			Image:     round2(float64(counts.Image) / float64(total) * 100),
			Redpacket: round2(float64(counts.Redpacket) / float64(total) * 100),
		}
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
