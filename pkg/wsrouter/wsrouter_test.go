package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeConn(t *testing.T) {
	mux := New()

	type pingInput struct {
		Value string `json:"value"`
	}

	received := make(chan string, 2)
	mux.Handle("PING", Typed(func(ctx context.Context, conn *websocket.Conn, input pingInput) error {
		assert.Equal(t, "PING", GetMessageTypeFromCtx(ctx))
		received <- input.Value
		return conn.WriteJSON(map[string]string{"type": "PONG"})
	}))

	routerErrs := make(chan error, 2)
	mux.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) {
		routerErrs <- err
	})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		mux.ServeConn(r.Context(), conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "PING",
		"payload": map[string]string{"value": "hello"},
	}))
	assert.Equal(t, "hello", <-received)

	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "PONG", pong["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NOPE"}))
	err = <-routerErrs
	assert.Contains(t, err.Error(), "unknown message type")
}
