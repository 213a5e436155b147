package wspubsub_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	wspubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/websocket"
)

func newTestServer(t *testing.T, hub *wspubsub.Hub) string {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			var topics []string
			if q := r.URL.Query().Get("types"); q != "" {
				topics = strings.Split(q, ",")
			}
			//nolint
			hub.Serve(w, r, topics)
		},
	))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) string {
	//nolint
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestHub(t *testing.T) {
	hub := wspubsub.NewHub()
	url := newTestServer(t, hub)

	all := dial(t, url)
	fulfilled := dial(t, url+"?types=INTENT_FULFILLED")

	require.Eventually(t, func() bool {
		return hub.NumClients() == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish("DEPOSIT_CREATED", []byte(`{"n":1}`)))
	require.NoError(t, hub.Publish("INTENT_FULFILLED", []byte(`{"n":2}`)))

	require.Equal(t, `{"n":1}`, readMessage(t, all))
	require.Equal(t, `{"n":2}`, readMessage(t, all))
	require.Equal(t, `{"n":2}`, readMessage(t, fulfilled))

	fulfilled.Close()
	require.Eventually(t, func() bool {
		return hub.NumClients() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Close()
	require.Zero(t, hub.NumClients())

	//nolint
	all.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := all.ReadMessage()
	require.Error(t, err)
}
