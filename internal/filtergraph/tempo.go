package filtergraph

import "fmt"

// FFmpeg's atempo filter only accepts factors within a bounded multiplicative
// range per stage; arbitrary rates are achieved by chaining stages whose
// factors multiply to the requested rate.
const (
	TempoLowerBound = 0.5
	TempoUpperBound = 100.0
)

// TempoChain decomposes rate into a sequence of atempo stages, each within
// [TempoLowerBound, TempoUpperBound], whose factors multiply back to rate.
// A rate of exactly 1.0 yields an empty chain.
func TempoChain(rate float64) ([]Filter, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("tempo chain: rate %v must be positive", rate)
	}

	var stages []Filter
	remaining := rate
	for remaining > TempoUpperBound {
		stages = append(stages, Tempo(TempoUpperBound))
		remaining /= TempoUpperBound
	}
	for remaining < TempoLowerBound {
		stages = append(stages, Tempo(TempoLowerBound))
		remaining /= TempoLowerBound
	}
	if remaining != 1.0 {
		stages = append(stages, Tempo(remaining))
	}
	return stages, nil
}
