package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	QueriesAnswered   metric.Int64Counter
	QueryDuration     metric.Float64Histogram
	DocumentsIngested metric.Int64Counter
	ChunksStored      metric.Int64Counter
	CacheHits         metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("law-rag-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queriesAnswered, err := meter.Int64Counter(
		"query.answered.total",
		metric.WithDescription("Total legal questions answered"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"query.duration",
		metric.WithDescription("End-to-end query pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsIngested, err := meter.Int64Counter(
		"ingestion.documents.total",
		metric.WithDescription("Total documents ingested"),
	)
	if err != nil {
		return nil, err
	}

	chunksStored, err := meter.Int64Counter(
		"ingestion.chunks.total",
		metric.WithDescription("Total chunks stored in the vector store"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"answer_cache.hits.total",
		metric.WithDescription("Answer cache hits"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		QueriesAnswered:   queriesAnswered,
		QueryDuration:     queryDuration,
		DocumentsIngested: documentsIngested,
		ChunksStored:      chunksStored,
		CacheHits:         cacheHits,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordQuery records one answered question.
func (m *Metrics) RecordQuery(country string, durationSeconds float64, cached bool) {
	attrs := []attribute.KeyValue{
		attribute.String("country", country),
		attribute.Bool("cached", cached),
	}

	m.QueriesAnswered.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.QueryDuration.Record(context.Background(), durationSeconds, metric.WithAttributes(attrs...))
	if cached {
		m.CacheHits.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	}
}

// RecordIngestion records one ingestion run.
func (m *Metrics) RecordIngestion(country, lawType string, chunks int, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("country", country),
		attribute.String("law_type", lawType),
		attribute.Bool("success", success),
	}

	m.DocumentsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	if success {
		m.ChunksStored.Add(context.Background(), int64(chunks), metric.WithAttributes(attrs...))
	}
}
