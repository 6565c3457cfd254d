package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Notifications(t *testing.T) {
	m := NewMetrics()
	m.RecordNotification(NotificationSent)
	m.RecordNotification(NotificationSent)
	m.RecordNotification(NotificationFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationFailed)))
}

func TestMetrics_ComplaintCounts(t *testing.T) {
	m := NewMetrics()
	m.SetComplaintCounts(map[string]int64{"PENDING": 2, "RESOLVED": 0})
	m.SetComplaintCounts(map[string]int64{"PENDING": 3})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.complaintsStatus.WithLabelValues("PENDING")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.complaintsStatus.WithLabelValues("RESOLVED")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/x", "GET", 200, time.Millisecond)
		m.RecordError("/x", "GET", "NOT_FOUND")
		m.RecordNotification(NotificationDropped)
		m.SetComplaintCounts(map[string]int64{"PENDING": 1})
	})
}

func TestMetrics_RequestCounter(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/complaints", "POST", 200, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/complaints", "200")))
}
