package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/lumo/internal/common"
)

const (
	stageConvert   = "convert"
	stageResize    = "resize"
	stageNormalize = "normalize"
	stageInfer     = "infer"
	stageDecode    = "decode"
)

var stageNames = []string{stageConvert, stageResize, stageNormalize, stageInfer, stageDecode}

// Stats is a point-in-time snapshot of pipeline activity.
type Stats struct {
	FramesProcessed uint64                   `json:"frames_processed"`
	FramesDropped   uint64                   `json:"frames_dropped"`
	FramesFailed    uint64                   `json:"frames_failed"`
	LastFrameSeq    uint64                   `json:"last_frame_seq"`
	StageLatency    map[string]time.Duration `json:"stage_latency_ns"`
}

// statsCollector aggregates counters and per-stage moving-average latencies.
// The pipeline worker writes; stats readers snapshot concurrently.
type statsCollector struct {
	frames  atomic.Uint64
	failed  atomic.Uint64
	lastSeq atomic.Uint64
	latency map[string]*common.MovingAverage
}

func (s *statsCollector) init() {
	s.latency = make(map[string]*common.MovingAverage, len(stageNames))
	for _, name := range stageNames {
		s.latency[name] = common.NewMovingAverage(0)
	}
}

func (s *statsCollector) record(stage string, d time.Duration) {
	if avg, ok := s.latency[stage]; ok {
		avg.Add(d)
	}
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (s *statsCollector) processed(seq uint64) {
	s.frames.Add(1)
	s.lastSeq.Store(seq)
}

func (s *statsCollector) fail() {
	s.failed.Add(1)
}

// Stats snapshots current pipeline counters and stage latencies.
func (c *Classifier) Stats() Stats {
	st := Stats{
		FramesProcessed: c.stats.frames.Load(),
		FramesDropped:   c.box.drops(),
		FramesFailed:    c.stats.failed.Load(),
		LastFrameSeq:    c.stats.lastSeq.Load(),
		StageLatency:    make(map[string]time.Duration, len(stageNames)),
	}
	for name, avg := range c.stats.latency {
		st.StageLatency[name] = avg.Value()
	}
	return st
}
