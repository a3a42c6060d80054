package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trade-finance-cloud/internal/pricefeed/application"
	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

func TestStreamHandler_AckAndOrderedForwarding(t *testing.T) {
	broker := application.NewBroker()
	handler := NewStreamHandler(broker, testLogger())
	server := httptest.NewServer(handler)
	defer server.Close()

	key := pricefeed.NewKey("IN", "wheat")
	conn := dialStream(t, server, "country=IN&commodity=wheat")
	defer conn.Close()

	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if string(ack) != "Connected to price feed" {
		t.Fatalf("unexpected ack: %q", ack)
	}

	waitForSubscribers(t, broker, key, 1)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		broker.Publish(key, pricefeed.Observation{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Price:     float64(100 + i),
		})
	}

	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read message %d: %v", i, err)
		}
		var msg struct {
			Country   string  `json:"country"`
			Commodity string  `json:"commodity"`
			Price     float64 `json:"price"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message %d: %v", i, err)
		}
		if msg.Country != "IN" || msg.Commodity != "wheat" {
			t.Fatalf("message %d routed to wrong key: %+v", i, msg)
		}
		if msg.Price != float64(100+i) {
			t.Fatalf("message %d out of order: expected %d, got %.2f", i, 100+i, msg.Price)
		}
	}
}

func TestStreamHandler_DisconnectDeregisters(t *testing.T) {
	broker := application.NewBroker()
	handler := NewStreamHandler(broker, testLogger())
	server := httptest.NewServer(handler)
	defer server.Close()

	key := pricefeed.NewKey("US", "gold")
	conn := dialStream(t, server, "country=US&commodity=gold")

	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	waitForSubscribers(t, broker, key, 1)

	conn.Close()
	waitForSubscribers(t, broker, key, 0)
}

func TestStreamHandler_MissingKeyRejectedBeforeUpgrade(t *testing.T) {
	broker := application.NewBroker()
	handler := NewStreamHandler(broker, testLogger())
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "?country=IN")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStreamHandler_TwoClientsIsolatedByKey(t *testing.T) {
	broker := application.NewBroker()
	handler := NewStreamHandler(broker, testLogger())
	server := httptest.NewServer(handler)
	defer server.Close()

	wheat := dialStream(t, server, "country=IN&commodity=wheat")
	defer wheat.Close()
	gold := dialStream(t, server, "country=IN&commodity=gold")
	defer gold.Close()

	for _, conn := range []*websocket.Conn{wheat, gold} {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read ack: %v", err)
		}
	}
	waitForSubscribers(t, broker, pricefeed.NewKey("IN", "wheat"), 1)
	waitForSubscribers(t, broker, pricefeed.NewKey("IN", "gold"), 1)

	broker.Publish(pricefeed.NewKey("IN", "gold"), pricefeed.Observation{Price: 2100, Timestamp: time.Now()})

	gold.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := gold.ReadMessage(); err != nil {
		t.Fatalf("gold client should receive its observation: %v", err)
	}

	wheat.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, payload, err := wheat.ReadMessage(); err == nil {
		t.Fatalf("wheat client received foreign observation: %s", payload)
	}
}

func TestStreamHandler_UpstreamRelay(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, payload := range []string{"m1", "m2"} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		time.Sleep(100 * time.Millisecond)
	}))
	defer upstream.Close()

	handler := NewStreamHandler(nil, testLogger(), WithUpstream(wsURL(upstream.URL)))
	server := httptest.NewServer(handler)
	defer server.Close()

	conn := dialStream(t, server, "country=IN&commodity=wheat")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if string(ack) != "Connected to price feed" {
		t.Fatalf("unexpected ack: %q", ack)
	}

	for _, want := range []string{"m1", "m2"} {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read %s: %v", want, err)
		}
		if string(payload) != want {
			t.Fatalf("expected %q forwarded verbatim, got %q", want, payload)
		}
	}
}

func TestStreamHandler_UpstreamUnavailableCloses(t *testing.T) {
	handler := NewStreamHandler(nil, testLogger(), WithUpstream("ws://127.0.0.1:1/ws"))
	server := httptest.NewServer(handler)
	defer server.Close()

	conn := dialStream(t, server, "country=IN&commodity=wheat")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read ack: %v", err)
	}

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected close error, got %v", err)
	}
	if closeErr.Code != websocket.CloseInternalServerErr {
		t.Fatalf("expected close code %d, got %d", websocket.CloseInternalServerErr, closeErr.Code)
	}
}

func dialStream(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL)+"?"+query, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func waitForSubscribers(t *testing.T, broker *application.Broker, key pricefeed.Key, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if broker.SubscriberCount(key) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("key %s: subscriber count never reached %d (got %d)", key, want, broker.SubscriberCount(key))
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
