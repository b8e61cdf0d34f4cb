package analytics

import (
	"encoding/json"
	"sort"

	"github.com/senzi/weibochat-insight/internal/dataset"
)

// Gift amounts above this are treated as outliers and excluded from the
// series entirely.
const maxRedpacketAmount = 50

// ScatterPoint is one (date, amount) gift observation, serialized as a
// two-element array for the scatter chart.
type ScatterPoint struct {
	Date   string
	Amount float64
}

func (p ScatterPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Date, p.Amount})
}

func (p *ScatterPoint) UnmarshalJSON(data []byte) error {
	var arr [2]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[0], &p.Date); err != nil {
		return err
	}
	return json.Unmarshal(arr[1], &p.Amount)
}

// CumulativePoint is the running gift total through one date.
type CumulativePoint struct {
	Date             string  `json:"date"`
	CumulativeAmount float64 `json:"cumulative_amount"`
}

// RedpacketSeries is the gift-amount-over-time view.
type RedpacketSeries struct {
	Scatter    []ScatterPoint    `json:"scatter"`
	Cumulative []CumulativePoint `json:"cumulative"`
}

// Redpackets builds the gift scatter and cumulative series over records with
// a parsed amount of at most 50. Scatter order follows the dataset; the
// cumulative series is a running total over ascending dates.
func Redpackets(ds *dataset.Dataset) RedpacketSeries {
	series := RedpacketSeries{
		Scatter:    make([]ScatterPoint, 0),
		Cumulative: make([]CumulativePoint, 0),
	}

	byDate := make(map[string]float64)
	for _, rec := range ds.Records {
		if !rec.IsRedpacket || rec.RedpacketAmount == nil || *rec.RedpacketAmount > maxRedpacketAmount {
			continue
		}
		series.Scatter = append(series.Scatter, ScatterPoint{Date: rec.Date, Amount: *rec.RedpacketAmount})
		byDate[rec.Date] += *rec.RedpacketAmount
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var running float64
	for _, date := range dates {
		running += byDate[date]
		series.Cumulative = append(series.Cumulative, CumulativePoint{
			Date:             date,
			CumulativeAmount: running,
		})
	}
	return series
}
