// Package telemetry expone las métricas Prometheus del servicio.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers and middleware report into.
type Recorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
	RecordWebhookMessage(platform string, created bool)
	RecordOutreachCreated(platform string)
	RecordStoreError(op string)
	RecordUpstreamError(platform string)
}

type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	webhookMsgs *prometheus.CounterVec
	outreach    *prometheus.CounterVec
	storeErrs   *prometheus.CounterVec
	upstream    *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spark_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spark_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		webhookMsgs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spark_webhook_messages_total",
			Help: "Inbound DMs received by webhook, by platform and outcome.",
		}, []string{"platform", "outcome"}),
		outreach: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spark_outreach_entries_created_total",
			Help: "Outreach entries created, by platform.",
		}, []string{"platform"}),
		storeErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spark_store_errors_total",
			Help: "Record store failures by operation.",
		}, []string{"op"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spark_upstream_errors_total",
			Help: "Platform API failures by platform.",
		}, []string{"platform"}),
	}
	reg.MustRegister(c.requests, c.latency, c.webhookMsgs, c.outreach, c.storeErrs, c.upstream)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordWebhookMessage(platform string, created bool) {
	outcome := "duplicate"
	if created {
		outcome = "created"
	}
	c.webhookMsgs.WithLabelValues(platform, outcome).Inc()
}

func (c *Collector) RecordOutreachCreated(platform string) {
	c.outreach.WithLabelValues(platform).Inc()
}

func (c *Collector) RecordStoreError(op string) { c.storeErrs.WithLabelValues(op).Inc() }

func (c *Collector) RecordUpstreamError(platform string) { c.upstream.WithLabelValues(platform).Inc() }

// Handler sirve el scrape de Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop descarta todo; útil en tests.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordWebhookMessage(string, bool)                {}
func (Nop) RecordOutreachCreated(string)                     {}
func (Nop) RecordStoreError(string)                          {}
func (Nop) RecordUpstreamError(string)                       {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
