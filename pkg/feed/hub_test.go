package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/feed"
)

type fakeSource struct {
	mu       sync.Mutex
	snapshot junction.Snapshot
}

func (s *fakeSource) Snapshot() junction.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *fakeSource) set(snapshot junction.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

func startHub(t *testing.T, source feed.SnapshotSource) (*feed.Hub, string) {
	t.Helper()

	hub := feed.NewHub(source, feed.WithInterval(10*time.Millisecond), feed.WithLogger(testr.New(t)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	require.Eventually(t, hub.Running, 5*time.Second, time.Millisecond)

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		<-done
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func readSnapshot(t *testing.T, conn *websocket.Conn) junction.Snapshot {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env feed.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, feed.EventSnapshot, env.Type)

	var snapshot junction.Snapshot
	require.NoError(t, json.Unmarshal(env.Payload, &snapshot))
	return snapshot
}

func TestHub_SendsCurrentSnapshotOnConnect(t *testing.T) {
	source := &fakeSource{snapshot: junction.Snapshot{
		Name:   "feed-test",
		Queues: junction.QueueState{3, 1, 4, 1},
	}}
	_, url := startHub(t, source)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "feed-test", snapshot.Name)
	assert.Equal(t, junction.QueueState{3, 1, 4, 1}, snapshot.Queues)
	assert.False(t, snapshot.Started)
}

func TestHub_BroadcastsUpdates(t *testing.T) {
	source := &fakeSource{}
	_, url := startHub(t, source)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readSnapshot(t, conn)

	source.set(junction.Snapshot{
		Queues:  junction.QueueState{0, 0, 9, 2},
		Signals: junction.SignalState{junction.Red, junction.Red, junction.Green, junction.Green},
		Axis:    junction.TopBottom,
		Started: true,
		Cycle:   7,
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot := readSnapshot(t, conn)
		if snapshot.Cycle != 7 {
			continue
		}
		assert.Equal(t, junction.TopBottom, snapshot.Axis)
		assert.Equal(t, junction.Green, snapshot.Signals.Color(junction.Top))
		assert.Equal(t, junction.Red, snapshot.Signals.Color(junction.Left))
		return
	}
	t.Fatal("Expected updated snapshot to be broadcast")
}

func TestHub_IgnoresClientMessages(t *testing.T) {
	source := &fakeSource{snapshot: junction.Snapshot{Cycle: 1}}
	hub, url := startHub(t, source)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readSnapshot(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"set_signal","payload":{"left":"green"}}`)))

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, uint64(1), snapshot.Cycle)
	assert.Equal(t, 1, hub.Clients())
}

func TestHub_TracksClients(t *testing.T) {
	hub, url := startHub(t, &fakeSource{})

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	readSnapshot(t, first)
	readSnapshot(t, second)
	assert.Eventually(t, func() bool { return hub.Clients() == 2 }, 5*time.Second, 10*time.Millisecond)

	first.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_RefusesClientsBeforeRun(t *testing.T) {
	hub := feed.NewHub(&fakeSource{}, feed.WithLogger(testr.New(t)))
	server := httptest.NewServer(hub)
	defer server.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 0, hub.Clients())
	assert.False(t, hub.Running())
}

func TestHub_RunsOnce(t *testing.T) {
	hub, _ := startHub(t, &fakeSource{})

	assert.Error(t, hub.Run(context.Background()))
}
