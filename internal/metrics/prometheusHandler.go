package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ragchain_http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var jobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ragchain_jobs_in_queue",
	Help: "Number of jobs waiting for a worker",
})

var activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ragchain_active_workers",
	Help: "Number of running workers",
})

var workerSpawns = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ragchain_worker_spawns_total",
	Help: "How often the dispatcher started an extra worker",
})

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ragchain_job_duration_seconds",
	Help:    "Time spent processing a job, by kind and outcome.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"kind", "status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ragchain_dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline steps.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ragchain_chunks_ingested_total",
	Help: "Chunks written to the vector index",
})

var retrievedPassages = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ragchain_retrieved_passages",
	Help:    "Passages returned per retrieval",
	Buckets: []float64{0, 1, 2, 3, 5, 10},
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func Handler() http.Handler { return promhttp.Handler() }

func IncrementJobsInQueue() { jobsInQueue.Inc() }
func DecrementJobsInQueue() { jobsInQueue.Dec() }

func IncrementWorkerSpawns() { workerSpawns.Inc() }

func IncrementActiveWorkerCount() { activeWorkers.Inc() }
func DecrementActiveWorkerCount() { activeWorkers.Dec() }

func AddChunksIngested(n int) { chunksIngested.Add(float64(n)) }

func ObserveRetrieved(n int) { retrievedPassages.Observe(float64(n)) }

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(kind string, status string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(kind, status).Observe(timeElapsed.Seconds())
}
