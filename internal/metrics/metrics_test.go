package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("work", "ok"))
	RecordUpstream("work", "ok", 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamRequests.WithLabelValues("work", "ok")))
}

func TestRecordHTTPUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("unmatched", "404"))
	RecordHTTP("", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("unmatched", "404")))
}
