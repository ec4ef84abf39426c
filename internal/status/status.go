// Package status defines the structured progress events the core emits
// during a run (§2: the engine reports state through events, not a
// built-in display — rendering them is an external collaborator's job).
package status

import "github.com/fizil/fizil/internal/logger"

// Event is one progress update posted by the aggregator after processing a
// result.
type Event struct {
	TestsRun      int
	CrashesSeen   int
	FindingsCount int
	Stage         string
}

// Sink receives status events. Initialize is called once at run start with
// the total number of examples being fuzzed; Update is called after every
// processed result.
type Sink interface {
	Initialize(exampleCount int)
	Update(e Event)
}

// LoggingSink is the default Sink: it reports progress through the ambient
// logger rather than drawing a terminal UI, matching this module's scope
// (no console glyph renderer here — see design notes).
type LoggingSink struct {
	every int
}

// NewLoggingSink returns a Sink that logs an Update every `every` calls (to
// avoid flooding the log on a fast run). A value <= 0 logs every call.
func NewLoggingSink(every int) *LoggingSink {
	if every <= 0 {
		every = 1
	}
	return &LoggingSink{every: every}
}

func (s *LoggingSink) Initialize(exampleCount int) {
	logger.Info("starting run: %d example(s)", exampleCount)
}

func (s *LoggingSink) Update(e Event) {
	if e.TestsRun%s.every != 0 {
		return
	}
	logger.Info("progress: tests=%d crashes=%d findings=%d stage=%s", e.TestsRun, e.CrashesSeen, e.FindingsCount, e.Stage)
}
