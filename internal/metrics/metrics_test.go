package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.InDelta(t, hits+1, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, misses+2, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss")), 0)
}

func TestRecordCacheStore_FailureAddsNoBytes(t *testing.T) {
	before := testutil.ToFloat64(cacheBytesDownloaded)

	RecordCacheStore(4096, time.Second, false)
	assert.InDelta(t, before, testutil.ToFloat64(cacheBytesDownloaded), 0)

	RecordCacheStore(4096, time.Second, true)
	assert.InDelta(t, before+4096, testutil.ToFloat64(cacheBytesDownloaded), 0)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	SetCacheEntries(7)
	RecordSeek("native", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "riptide_cache_entries 7")
	assert.Contains(t, body, `riptide_seeks_total{strategy="native"}`)
}
