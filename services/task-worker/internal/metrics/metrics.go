package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TasksProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasks_processed_total",
		Help: "Background tasks handled by the worker",
	}, []string{"task", "outcome"})
	TaskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "task_duration_seconds",
		Help:    "Background task handling duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
)

func init() {
	prometheus.MustRegister(TasksProcessedTotal, TaskDuration)
}
