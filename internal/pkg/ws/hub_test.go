package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveHub 启动一个把每个连接注册为 userID 的测试服务器
func serveHub(t *testing.T, hub *Hub, userID int64) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{UserID: userID, Conn: conn}
		hub.Register(client)

		go func() {
			defer hub.Unregister(client)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_Empty(t *testing.T) {
	hub := NewHub()

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.IsOnline(123))

	// 用户不在线时不报错
	assert.NoError(t, hub.SendToUser(123, &Message{Type: "test"}))
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	url := serveHub(t, hub, 100)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.IsOnline(100) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ConnectionCount())

	conn.Close()
	require.Eventually(t, func() bool { return !hub.IsOnline(100) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_ForwardToEveryConnection(t *testing.T) {
	hub := NewHub()
	url := serveHub(t, hub, 200)

	phone := dial(t, url)
	tablet := dial(t, url)
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Forward(&pubsub.Event{Type: pubsub.EventPointsEarned, UserID: 200, Balance: 15, Delta: 5})

	for _, conn := range []*websocket.Conn{phone, tablet} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string       `json:"type"`
			Data pubsub.Event `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, pubsub.EventPointsEarned, msg.Type)
		assert.Equal(t, 15, msg.Data.Balance)
		assert.Equal(t, 5, msg.Data.Delta)
	}
}

func TestHub_ForwardIgnoresOtherUsers(t *testing.T) {
	hub := NewHub()
	url := serveHub(t, hub, 300)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.IsOnline(300) }, time.Second, 10*time.Millisecond)

	hub.Forward(&pubsub.Event{Type: pubsub.EventPlanChanged, UserID: 301, PlanCode: "PLUS"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no message expected for another user")
}
