package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_DisabledReturnsNoop(t *testing.T) {
	r := Init(false)

	_, ok := r.(*NoopMetrics)
	assert.True(t, ok)
}

func TestInit_EnabledReturnsMetrics(t *testing.T) {
	r := Init(true)

	m, ok := r.(*Metrics)
	assert.True(t, ok)
	assert.NotNil(t, m.CallbackTotal)

	// Repeated Init must hand back the same registered instance
	assert.Same(t, r, Init(true))
}

func TestNoopMetrics_Recordings(t *testing.T) {
	n := NewNoopMetrics()

	// All recordings are no-ops and must not panic
	n.RecordLoginInitiated()
	n.RecordCallback("success")
	n.RecordLogout()
	n.RecordAccountProvisioned("admin")
	n.RecordProviderCall("request_token", false)
	n.RecordRateLimitExceeded("/login")
}

func TestMetrics_Recordings(t *testing.T) {
	r := Init(true)

	r.RecordLoginInitiated()
	r.RecordCallback("rejected")
	r.RecordLogout()
	r.RecordAccountProvisioned("user")
	r.RecordProviderCall("verify_credentials", true)
	r.RecordRateLimitExceeded("/login")
}
