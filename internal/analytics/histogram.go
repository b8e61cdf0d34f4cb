package analytics

import (
	"fmt"

	"github.com/senzi/weibochat-insight/internal/dataset"
)

const binWidth = 10

// HistogramBin is one non-empty fixed-width bucket, half-open [Min, Max).
type HistogramBin struct {
	Range string `json:"range"`
	Count int    `json:"count"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// LengthHistograms is the length/token distribution view for text messages.
type LengthHistograms struct {
	ContentLen []HistogramBin `json:"content_len"`
	TokenCount []HistogramBin `json:"token_count"`
}

// Histograms builds content-length and token-count histograms over text
// records. Both are independently empty slices when nothing qualifies.
func Histograms(ds *dataset.Dataset) LengthHistograms {
	var lengths, tokens []int
	for _, rec := range ds.Records {
		if !rec.IsText {
			continue
		}
		lengths = append(lengths, rec.ContentLen)
		tokens = append(tokens, rec.TokenCount)
	}

	return LengthHistograms{
		ContentLen: histogram(lengths),
		TokenCount: histogram(tokens),
	}
}

// histogram bins values into [k*10, (k+1)*10) buckets from 0 up through the
// bucket containing the maximum, emitting only non-empty buckets in order.
func histogram(values []int) []HistogramBin {
	bins := make([]HistogramBin, 0)
	if len(values) == 0 {
		return bins
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}

	counts := make([]int, max/binWidth+1)
	for _, v := range values {
		if v >= 0 {
			counts[v/binWidth]++
		}
	}

	for k, count := range counts {
		if count == 0 {
			continue
		}
		lo, hi := k*binWidth, (k+1)*binWidth
		bins = append(bins, HistogramBin{
			Range: fmt.Sprintf("[%d, %d)", lo, hi),
			Count: count,
			Min:   lo,
			Max:   hi,
		})
	}
	return bins
}
