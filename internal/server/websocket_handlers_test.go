package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"dojo/internal/notifications"
	"dojo/internal/serializer"
	"dojo/internal/storage"
	"dojo/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves env.app on a loopback port and returns its address.
func (e *testEnv) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })
	return ln.Addr().String()
}

func dialEvents(t *testing.T, addr, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/ws?token="+token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) notifications.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var event notifications.Event
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func TestWebSocket_ReceivesPostCreated(t *testing.T) {
	tests := []struct {
		name      string
		withRedis bool
	}{
		{"local hub", false},
		{"redis pubsub", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "test")
			db := testutil.NewTestDB(t)
			store := storage.NewMemoryGateway()

			var mr *miniredis.Miniredis
			var rdb *redis.Client
			if tt.withRedis {
				mr = miniredis.RunT(t)
				rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = rdb.Close() })
			}
			srv, err := NewServerWithDeps(testConfig(), db, rdb, store)
			require.NoError(t, err)
			env := &testEnv{srv: srv, app: srv.NewApp(), db: db, store: store, mr: mr}

			if tt.withRedis {
				ctx, cancel := context.WithCancel(context.Background())
				t.Cleanup(cancel)
				go func() { _ = srv.hub.StartWiring(ctx, srv.notifier) }()
				require.Eventually(t, func() bool { return mr.PubSubNumPat() > 0 }, 5*time.Second, 10*time.Millisecond)
			}

			alice := testutil.CreateUser(t, db, "alice")
			bob := testutil.CreateUser(t, db, "bob")
			addr := env.listen(t)
			conn := dialEvents(t, addr, env.tokenFor(t, bob))
			require.Eventually(t, func() bool { return srv.hub.Count() == 1 }, 5*time.Second, 10*time.Millisecond)

			resp := env.doMultipart(t, http.MethodPost, "/api/posts", postData("Kata"),
				&filePart{field: "file", filename: mp4Upload, contentType: "video/mp4", content: []byte("v")},
				env.tokenFor(t, alice))
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			var created serializer.Post
			decode(t, resp, &created)

			event := readEvent(t, conn)
			assert.Equal(t, notifications.EventPostCreated, event.Type)
			payload, ok := event.Payload.(map[string]any)
			require.True(t, ok)
			assert.EqualValues(t, created.ID, payload["id"])
			assert.Equal(t, "alice", payload["username"])
		})
	}
}
