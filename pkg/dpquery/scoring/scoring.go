// Package scoring implements performance and scoring (C9, §4.8): per-run
// result records, cross-run summaries (count, min/max/avg rate, hit
// counts, standard deviation via the second-moment shortcut), and
// per-configuration running scores with tie-break-safe comparators.
package scoring

import (
	"math"
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// Record is one run's performance record (§4.8).
type Record struct {
	RequestID         string
	RecoveredMessages int
	RecoveredBytes    int64
	CorrelatedBlocks  int
	DurationRecovery  float64 // seconds
	DurationAssembly  float64 // seconds
	DataRateMBps      float64
	OrderingOK        bool
	DisjointOK        bool
}

// NewRecord computes DataRateMBps from bytes and total duration.
func NewRecord(requestID string, messages int, bytes int64, blocks int, durRecovery, durAssembly float64, orderingOK, disjointOK bool) Record {
	total := durRecovery + durAssembly
	rate := 0.0
	if total > 0 {
		rate = (float64(bytes) / (1024 * 1024)) / total
	}
	return Record{
		RequestID: requestID, RecoveredMessages: messages, RecoveredBytes: bytes,
		CorrelatedBlocks: blocks, DurationRecovery: durRecovery, DurationAssembly: durAssembly,
		DataRateMBps: rate, OrderingOK: orderingOK, DisjointOK: disjointOK,
	}
}

// Summary aggregates many Records: count, min/max/avg rate, hit counts
// against a configurable threshold, and the rate's standard deviation
// via the second-moment shortcut σ = √(⟨r²⟩ − ⟨r⟩²) (§4.8).
type Summary struct {
	Count         atomic.Int64
	sumRate       atomic.Float64
	sumRateSq     atomic.Float64
	minRate       atomic.Float64
	maxRate       atomic.Float64
	thresholdHits atomic.Int64
	ThresholdMBps float64
	perRequestHit map[string]*atomic.Int64
	mu            sync.Mutex // guards perRequestHit
}

// NewSummary builds a Summary that counts runs at or above
// thresholdMBps as "hits".
func NewSummary(thresholdMBps float64) *Summary {
	s := &Summary{ThresholdMBps: thresholdMBps, perRequestHit: make(map[string]*atomic.Int64)}
	s.minRate.Store(math.Inf(1))
	s.maxRate.Store(math.Inf(-1))
	return s
}

// Add folds one Record into the running summary. Safe for concurrent
// callers (§4.8 summaries are built from many runs, potentially
// in-flight concurrently with scoring reads).
func (s *Summary) Add(r Record) {
	s.Count.Add(1)
	s.sumRate.Add(r.DataRateMBps)
	s.sumRateSq.Add(r.DataRateMBps * r.DataRateMBps)
	for {
		cur := s.minRate.Load()
		if r.DataRateMBps >= cur {
			break
		}
		if s.minRate.CompareAndSwap(cur, r.DataRateMBps) {
			break
		}
	}
	for {
		cur := s.maxRate.Load()
		if r.DataRateMBps <= cur {
			break
		}
		if s.maxRate.CompareAndSwap(cur, r.DataRateMBps) {
			break
		}
	}
	if r.DataRateMBps >= s.ThresholdMBps {
		s.thresholdHits.Add(1)
	}
	s.mu.Lock()
	hit, ok := s.perRequestHit[r.RequestID]
	if !ok {
		hit = atomic.NewInt64(0)
		s.perRequestHit[r.RequestID] = hit
	}
	s.mu.Unlock()
	hit.Add(1)
}

// Mean returns the average data rate across all recorded runs.
func (s *Summary) Mean() float64 {
	n := s.Count.Load()
	if n == 0 {
		return 0
	}
	return s.sumRate.Load() / float64(n)
}

// StdDev computes σ = √(⟨r²⟩ − ⟨r⟩²), clamped to 0 to absorb floating
// point underflow when variance is numerically negative (§4.8 "the
// second-moment shortcut").
func (s *Summary) StdDev() float64 {
	n := s.Count.Load()
	if n == 0 {
		return 0
	}
	meanSq := s.sumRateSq.Load() / float64(n)
	mean := s.Mean()
	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Min and Max report the smallest/largest recorded data rate, or 0 if
// no runs have been recorded.
func (s *Summary) Min() float64 {
	if s.Count.Load() == 0 {
		return 0
	}
	return s.minRate.Load()
}

func (s *Summary) Max() float64 {
	if s.Count.Load() == 0 {
		return 0
	}
	return s.maxRate.Load()
}

// ThresholdHits reports how many runs met or exceeded ThresholdMBps.
func (s *Summary) ThresholdHits() int64 { return s.thresholdHits.Load() }

// ConfigScore tracks one configuration's running average and extrema
// across the runs scored against it (§4.8 "Configuration scoring
// maintains per-configuration running averages and min/max").
type ConfigScore struct {
	Name    string
	Runs    int64
	Hits    int64
	sumRate float64
	minRate float64
	maxRate float64
}

// Record folds one run's rate into this configuration's score.
func (c *ConfigScore) Record(rate float64, hit bool) {
	if c.Runs == 0 {
		c.minRate, c.maxRate = rate, rate
	} else {
		if rate < c.minRate {
			c.minRate = rate
		}
		if rate > c.maxRate {
			c.maxRate = rate
		}
	}
	c.Runs++
	c.sumRate += rate
	if hit {
		c.Hits++
	}
}

// AverageRate returns the running mean rate for this configuration.
func (c *ConfigScore) AverageRate() float64 {
	if c.Runs == 0 {
		return 0
	}
	return c.sumRate / float64(c.Runs)
}

// ByReverseRate sorts ConfigScores by descending average rate, breaking
// ties by Name so the ordering never collapses two distinct, equally
// scored configurations into an ambiguous order (§4.8 "a tie-break that
// never collapses distinct entries").
func ByReverseRate(scores []*ConfigScore) {
	sort.Slice(scores, func(i, j int) bool {
		ri, rj := scores[i].AverageRate(), scores[j].AverageRate()
		if ri != rj {
			return ri > rj
		}
		return scores[i].Name < scores[j].Name
	})
}

// ByReverseHits sorts ConfigScores by descending hit count, breaking
// ties by Name.
func ByReverseHits(scores []*ConfigScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Hits != scores[j].Hits {
			return scores[i].Hits > scores[j].Hits
		}
		return scores[i].Name < scores[j].Name
	})
}
