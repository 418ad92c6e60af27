// File: internal/infra/metrics/chat.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_chats_created_total",
			Help: "Count of training chats created.",
		},
	)

	chatsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_chats_deleted_total",
			Help: "Count of training chats deleted.",
		},
	)

	messagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_messages_total",
			Help: "Count of messages appended, by role.",
		},
		[]string{"role"},
	)

	repliesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_replies_dropped_total",
			Help: "Replies discarded because the target chat was gone on arrival.",
		},
	)

	archiveWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_archive_writes_total",
			Help: "Archive write attempts, by success.",
		},
		[]string{"success"},
	)

	replyLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "training_reply_latency_ms",
			Help:    "Reply adapter latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)
)

func init() {
	register(chatsCreated, chatsDeleted, messagesAppended, repliesDropped, archiveWrites, replyLatencyMs)
}

func IncChatCreated() { chatsCreated.Inc() }
func IncChatDeleted() { chatsDeleted.Inc() }

func IncMessage(role string) { messagesAppended.WithLabelValues(role).Inc() }

func IncReplyDropped() { repliesDropped.Inc() }

func IncArchiveWrite(ok bool) {
	archiveWrites.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func ObserveReplyLatency(provider string, ok bool, ms float64) {
	replyLatencyMs.WithLabelValues(provider, strconv.FormatBool(ok)).Observe(ms)
}
