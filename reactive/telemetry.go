package reactive

// Phase is where the frame loop currently is.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseUpdate
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseCommit:
		return "commit"
	default:
		return "idle"
	}
}

// Checkpoint marks when within a frame a Stats snapshot was taken.
type Checkpoint uint8

const (
	CheckpointStart Checkpoint = iota
	CheckpointCommit
	CheckpointEnd
)

func (c Checkpoint) String() string {
	switch c {
	case CheckpointCommit:
		return "commit"
	case CheckpointEnd:
		return "end"
	default:
		return "start"
	}
}

type QueueSizes struct {
	High, Normal, Low int
}

func (q QueueSizes) Total() int {
	return q.High + q.Normal + q.Low
}

// Stats is a scheduler snapshot. Durations are milliseconds.
type Stats struct {
	Checkpoint Checkpoint
	Phase      Phase
	Frame      uint64

	// BudgetedMs excludes the leading high drain, TotalMs includes it.
	BudgetedMs float64
	TotalMs    float64
	HighBursts int
	ForcedLow  bool

	Queues         QueueSizes
	NormalBudgetMs float64
	LowBudgetMs    float64
	EWMAFrameMs    float64
	FramesSinceLow int
}

// Telemetry receives a Stats snapshot at the start, commit and end of every
// frame.
type Telemetry interface {
	Record(Stats)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(Stats)

func (f TelemetryFunc) Record(s Stats) { f(s) }
