package streamd

import (
	"github.com/prometheus/client_golang/prometheus"

	"songd/internal/events"
)

var (
	clientsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "songd",
			Subsystem: "stream",
			Name:      "clients_connected",
			Help:      "Clients with both channels paired",
		},
	)

	searchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "songd",
			Subsystem: "stream",
			Name:      "searches_total",
			Help:      "Search requests served on the communication channel",
		},
	)

	streamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "songd",
			Subsystem: "stream",
			Name:      "streams_total",
			Help:      "Song transfers by outcome",
		},
		[]string{"outcome"},
	)

	streamedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "songd",
			Subsystem: "stream",
			Name:      "streamed_bytes_total",
			Help:      "Audio bytes pushed to clients",
		},
	)

	eventsFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "songd",
			Subsystem: "stream",
			Name:      "events_fired_total",
			Help:      "Bus events observed by the metrics subscriber",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(clientsConnected, searchesTotal, streamsTotal, streamedBytesTotal, eventsFiredTotal)
}

// RegisterMetrics subscribes the prometheus collectors to the bus. All
// instrumentation is event-driven; the server and handlers never touch the
// collectors directly. The returned listener can be closed to detach.
func RegisterMetrics(bus *events.Bus) *events.Listener {
	l := bus.NewListener()
	events.Listen(l, EventClientConnected, func(ClientConnected) error {
		eventsFiredTotal.WithLabelValues(EventClientConnected).Inc()
		clientsConnected.Inc()
		return nil
	})
	events.Listen(l, EventClientRemoved, func(*clientHandler) error {
		eventsFiredTotal.WithLabelValues(EventClientRemoved).Inc()
		clientsConnected.Dec()
		return nil
	})
	events.Listen(l, EventSearchHandled, func(SearchHandled) error {
		eventsFiredTotal.WithLabelValues(EventSearchHandled).Inc()
		searchesTotal.Inc()
		return nil
	})
	events.Listen(l, EventStreamStarted, func(StreamStarted) error {
		eventsFiredTotal.WithLabelValues(EventStreamStarted).Inc()
		return nil
	})
	events.Listen(l, EventStreamFinished, func(e StreamFinished) error {
		eventsFiredTotal.WithLabelValues(EventStreamFinished).Inc()
		outcome := "completed"
		if e.Aborted {
			outcome = "aborted"
		}
		streamsTotal.WithLabelValues(outcome).Inc()
		streamedBytesTotal.Add(float64(e.Bytes))
		return nil
	})
	return l
}
