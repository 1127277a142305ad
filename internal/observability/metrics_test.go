package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: promauto registers metrics globally, so each test uses a unique
// namespace to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_discovery_new")

	assert.NotNil(t, m.PipelinesStarted)
	assert.NotNil(t, m.PipelineDuration)
	assert.NotNil(t, m.KeywordsPerQuery)
	assert.NotNil(t, m.KeywordSearches)
	assert.NotNil(t, m.SourceRequests)
	assert.NotNil(t, m.PapersDiscovered)
	assert.NotNil(t, m.PapersDuplicate)
}

func TestRecordPipelineStarted(t *testing.T) {
	m := NewMetrics("test_discovery_pipeline_started")

	initial := testutil.ToFloat64(m.PipelinesStarted)
	m.RecordPipelineStarted()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.PipelinesStarted))
}

func TestRecordPipelineCompleted(t *testing.T) {
	m := NewMetrics("test_discovery_pipeline_completed")

	m.RecordPipelineCompleted(3.2)

	count, err := histogramSampleCount(m.PipelineDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRecordKeywords(t *testing.T) {
	m := NewMetrics("test_discovery_keywords")

	m.RecordKeywords(3)

	count, err := histogramSampleCount(m.KeywordsPerQuery)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRecordKeywordSearch(t *testing.T) {
	m := NewMetrics("test_discovery_keyword_search")

	m.RecordKeywordSearch("ok")
	m.RecordKeywordSearch("ok")
	m.RecordKeywordSearch("empty")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.KeywordSearches.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.KeywordSearches.WithLabelValues("empty")))
}

func TestRecordSourceRequest(t *testing.T) {
	m := NewMetrics("test_discovery_source_request")

	m.RecordSourceRequest("openalex", "ok")
	m.RecordSourceRequest("crossref", "not_found")
	m.RecordSourceRequest("crossref", "not_found")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SourceRequests.WithLabelValues("openalex", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SourceRequests.WithLabelValues("crossref", "not_found")))
}

func TestRecordPaperCounters(t *testing.T) {
	m := NewMetrics("test_discovery_paper_counters")

	m.RecordPapersDiscovered(7)
	m.RecordPapersDuplicate(2)

	assert.Equal(t, float64(7), testutil.ToFloat64(m.PapersDiscovered))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PapersDuplicate))
}

// histogramSampleCount extracts the sample count from a histogram.
func histogramSampleCount(h prometheus.Histogram) (uint64, error) {
	metric := &dto.Metric{}
	if err := h.Write(metric); err != nil {
		return 0, err
	}
	return metric.Histogram.GetSampleCount(), nil
}
