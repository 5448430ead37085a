package metrics

// NoopMetrics is a no-operation implementation of Recorder.
// All methods are empty, providing zero overhead when metrics are disabled.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordLoginInitiated()                             {}
func (n *NoopMetrics) RecordCallback(outcome string)                     {}
func (n *NoopMetrics) RecordLogout()                                     {}
func (n *NoopMetrics) RecordAccountProvisioned(role string)              {}
func (n *NoopMetrics) RecordProviderCall(operation string, success bool) {}
func (n *NoopMetrics) RecordRateLimitExceeded(path string)               {}
