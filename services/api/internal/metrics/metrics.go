package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TasksDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasks_dispatched_total",
		Help: "Background tasks handed to the task queue",
	}, []string{"task"})
	TaskDispatchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_dispatch_errors_total",
		Help: "Background task handoffs that failed",
	}, []string{"task"})
	EventsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "log_events_published_total",
		Help: "Events published to the log topic",
	})
	EventPublishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "log_event_publish_errors_total",
		Help: "Event publications to the log topic that failed",
	})
	EventsConsumedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "log_events_consumed_total",
		Help: "Events read from the log topic by the subscriber",
	})
)

func init() {
	prometheus.MustRegister(
		TasksDispatchedTotal,
		TaskDispatchErrorsTotal,
		EventsPublishedTotal,
		EventPublishErrorsTotal,
		EventsConsumedTotal,
	)
}
