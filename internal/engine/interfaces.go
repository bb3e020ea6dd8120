package engine

// ProgressSink receives the completion percentage after each analysis stage.
type ProgressSink interface {
	Progress(percent int)
}

// Stage completion percentages reported to a ProgressSink.
const (
	ProgressPrioritized = 33
	ProgressAssigned    = 66
	ProgressAggregated  = 100
)
