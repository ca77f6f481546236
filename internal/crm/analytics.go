package crm

import (
	"math"

	"github.com/sells-group/inbox-crm/internal/model"
)

// StageMetric is the per-stage slice of the analytics rollup.
type StageMetric struct {
	Stage model.PipelineStage `json:"stage"`
	Count int                 `json:"count"`
	Value float64             `json:"value"`
}

// Summary is the read-only analytics rollup over the deal collection.
type Summary struct {
	TotalValue  float64       `json:"total_value"`
	ActiveDeals int           `json:"active_deals"`
	WonDeals    int           `json:"won_deals"`
	LostDeals   int           `json:"lost_deals"`
	WinRate     int           `json:"win_rate"` // percent
	Stages      []StageMetric `json:"stages"`
}

// GroupByStage buckets deals by pipeline stage, preserving relative order
// within each bucket.
func GroupByStage(deals []model.Deal) map[model.PipelineStage][]model.Deal {
	out := make(map[model.PipelineStage][]model.Deal, len(model.Stages()))
	for _, d := range deals {
		out[d.Stage] = append(out[d.Stage], d)
	}
	return out
}

// ValueByStage returns count and summed value per stage in display order.
// Every stage appears, including empty ones.
func ValueByStage(deals []model.Deal) []StageMetric {
	byStage := GroupByStage(deals)
	metrics := make([]StageMetric, 0, len(model.Stages()))
	for _, stage := range model.Stages() {
		m := StageMetric{Stage: stage}
		for _, d := range byStage[stage] {
			m.Count++
			m.Value += d.Value
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// TotalPipelineValue sums the value of every deal.
func TotalPipelineValue(deals []model.Deal) float64 {
	var total float64
	for _, d := range deals {
		total += d.Value
	}
	return total
}

// ActiveDealCount counts deals in a non-terminal stage.
func ActiveDealCount(deals []model.Deal) int {
	var n int
	for _, d := range deals {
		if !d.Stage.Terminal() {
			n++
		}
	}
	return n
}

// WinRate returns won/(won+lost) rounded to the nearest percent, and 0
// when no deal has closed yet.
func WinRate(deals []model.Deal) int {
	var won, lost int
	for _, d := range deals {
		switch d.Stage {
		case model.StageWon:
			won++
		case model.StageLost:
			lost++
		}
	}
	if won+lost == 0 {
		return 0
	}
	return int(math.Round(float64(won) / float64(won+lost) * 100))
}

// Summarize computes the full analytics rollup for a deal collection.
func Summarize(deals []model.Deal) Summary {
	var won, lost int
	for _, d := range deals {
		switch d.Stage {
		case model.StageWon:
			won++
		case model.StageLost:
			lost++
		}
	}
	return Summary{
		TotalValue:  TotalPipelineValue(deals),
		ActiveDeals: ActiveDealCount(deals),
		WonDeals:    won,
		LostDeals:   lost,
		WinRate:     WinRate(deals),
		Stages:      ValueByStage(deals),
	}
}
