package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trade-finance-cloud/internal/observability/metrics"
	"trade-finance-cloud/internal/pricefeed/application"
	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
	"trade-finance-cloud/internal/pricefeed/infrastructure/remote"
)

const (
	connectedAck  = "Connected to price feed"
	writeWait     = 10 * time.Second
	closeGrace    = time.Second
	closeInternal = websocket.CloseInternalServerErr
)

// streamMessage is the wire payload for one observation.
type streamMessage struct {
	Country   string    `json:"country"`
	Commodity string    `json:"commodity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamHandler bridges one websocket client to the live price feed.
// Each connection runs independently; a slow or failing client never
// affects siblings sharing the same broker.
type StreamHandler struct {
	broker      *application.Broker
	upstreamURL string
	logger      *log.Logger
	upgrader    websocket.Upgrader
}

// StreamOption customizes a StreamHandler.
type StreamOption func(*StreamHandler)

// WithUpstream relays a remote price stream instead of the in-process
// broker. Messages are forwarded verbatim.
func WithUpstream(url string) StreamOption {
	return func(h *StreamHandler) {
		h.upstreamURL = url
	}
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *application.Broker, logger *log.Logger, opts ...StreamOption) *StreamHandler {
	h := &StreamHandler{
		broker: broker,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles GET /ws/prices.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || (h.broker == nil && h.upstreamURL == "") {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	key := pricefeed.NewKey(r.URL.Query().Get("country"), r.URL.Query().Get("commodity"))
	if !key.Valid() {
		http.Error(w, "country and commodity are required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	metrics.StreamSessionStarted()
	defer metrics.StreamSessionEnded()

	if err := h.write(conn, websocket.TextMessage, []byte(connectedAck)); err != nil {
		return
	}

	// Read pump: the client never sends data we act on, but reading is
	// what surfaces a disconnect promptly.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if h.upstreamURL != "" {
		h.relayUpstream(r, conn, clientGone)
		return
	}
	h.streamLocal(conn, key, clientGone)
}

func (h *StreamHandler) streamLocal(conn *websocket.Conn, key pricefeed.Key, clientGone <-chan struct{}) {
	ch := h.broker.Subscribe(key)
	defer h.broker.Unsubscribe(key, ch)

	for {
		select {
		case <-clientGone:
			return
		case obs, ok := <-ch:
			if !ok {
				h.closeWithReason(conn, "price feed closed")
				return
			}
			msg := streamMessage{
				Country:   key.Country,
				Commodity: key.Commodity,
				Price:     obs.Price,
				Timestamp: obs.Timestamp,
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) relayUpstream(r *http.Request, conn *websocket.Conn, clientGone <-chan struct{}) {
	upstream, err := remote.Dial(r.Context(), h.upstreamURL)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("price stream upstream dial error: %v", err)
		}
		h.closeWithReason(conn, "upstream unavailable")
		return
	}
	defer upstream.Close()

	for {
		select {
		case <-clientGone:
			return
		case err := <-upstream.Errs():
			h.closeWithReason(conn, err.Error())
			return
		case payload, ok := <-upstream.Messages():
			if !ok {
				h.closeWithReason(conn, "upstream closed")
				return
			}
			if err := h.write(conn, websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, messageType int, payload []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}

func (h *StreamHandler) closeWithReason(conn *websocket.Conn, reason string) {
	// Close reasons are capped by the control frame size limit.
	if len(reason) > 100 {
		reason = reason[:100]
	}
	msg := websocket.FormatCloseMessage(closeInternal, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
}
