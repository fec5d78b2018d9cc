package metrics

import "time"

type QueryMetrics interface {
	QueryServed(total, filtered int, d time.Duration)
	QueryRejected()
}

type IngestMetrics interface {
	EventApplied(eventType string)
	EventDropped()
	IndexSize(n int)
	ScheduledLoaded(n int)
}

// DefaultMetrics discards everything.
type DefaultMetrics struct{}

func (DefaultMetrics) QueryServed(int, int, time.Duration) {}
func (DefaultMetrics) QueryRejected()                      {}
func (DefaultMetrics) EventApplied(string)                 {}
func (DefaultMetrics) EventDropped()                       {}
func (DefaultMetrics) IndexSize(int)                       {}
func (DefaultMetrics) ScheduledLoaded(int)                 {}
