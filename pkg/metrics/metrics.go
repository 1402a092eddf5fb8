package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesSent counts messages successfully appended to the store.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thriftit_messages_sent_total",
		Help: "Number of chat messages persisted and fanned out.",
	})

	// MessageSendFailures counts sends rejected by validation or persistence.
	MessageSendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thriftit_message_send_failures_total",
		Help: "Number of chat messages rejected, by reason.",
	}, []string{"reason"})

	// WSConnections tracks currently open realtime connections.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thriftit_ws_connections",
		Help: "Number of open websocket connections.",
	})

	// Uploads counts stored product/profile images.
	Uploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thriftit_uploads_total",
		Help: "Number of images stored.",
	})
)

// Handler exposes the prometheus registry as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
