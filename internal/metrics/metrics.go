package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fetch_requests_total", Help: "Upstream fetches by endpoint and outcome"}, []string{"endpoint", "outcome"})
	FetchLatencyMs     = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "fetch_latency_ms", Help: "Upstream fetch latency", Buckets: prometheus.LinearBuckets(10, 50, 20)}, []string{"endpoint"})
	CacheHitsTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_hits_total", Help: "TTL cache hits"})
	CacheMissesTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_misses_total", Help: "TTL cache misses"})
	WSClients          = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ws_clients", Help: "Connected dashboard websocket clients"})
	HTTPRequestsTotal  = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total", Help: "Dashboard API requests by path and status"}, []string{"path", "status"})
)

func Init() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		FetchRequestsTotal, FetchLatencyMs,
		CacheHitsTotal, CacheMissesTotal,
		WSClients, HTTPRequestsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
