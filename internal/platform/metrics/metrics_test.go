package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodPost, "/api/registrations", http.StatusCreated, time.Now())
	m.ObserveRequest(http.MethodPost, "/api/registrations", http.StatusUnprocessableEntity, time.Now())

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(422))
	assert.Equal(t, "5xx", statusClass(503))
}
