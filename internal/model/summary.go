package model

import "time"

// Summarize aggregates results into a RunSummary.
// Failed results count toward Dispatched and Failed but contribute no latency.
// AverageLatency is zero when nothing succeeded.
func Summarize(results []GenerationResult, elapsed time.Duration) RunSummary {
	sum := RunSummary{
		Results:      results,
		Dispatched:   len(results),
		TotalElapsed: elapsed,
	}

	for _, r := range results {
		if !r.Success {
			sum.Failed++
			continue
		}
		sum.Successful++
		sum.TotalLatency += r.Latency
	}

	if sum.Successful > 0 {
		sum.AverageLatency = sum.TotalLatency / time.Duration(sum.Successful)
	}
	return sum
}
