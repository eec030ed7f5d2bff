package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/decode"
)

func dialTestStream(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, func() {
		_ = conn.Close()
		ts.Close()
	}
}

func readPrediction(t *testing.T, conn *websocket.Conn) PredictionResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var p PredictionResponse
	require.NoError(t, json.Unmarshal(data, &p))
	return p
}

func TestStreamPushesPredictions(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	conn, cleanup := dialTestStream(t, s)
	defer cleanup()

	// Registration races with the first publish; wait for the subscriber.
	waitForSubscribers(t, s, 1)

	s.Publish(decode.Prediction{Index: 3, Label: "dog", FrameSeq: 11})
	p := readPrediction(t, conn)
	assert.Equal(t, 3, p.Index)
	assert.Equal(t, "dog", p.Label)
	assert.Equal(t, uint64(11), p.FrameSeq)
}

func TestStreamSeedsLatestOnConnect(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	s.Publish(decode.Prediction{Index: 7, FrameSeq: 2})

	conn, cleanup := dialTestStream(t, s)
	defer cleanup()

	p := readPrediction(t, conn)
	assert.Equal(t, 7, p.Index, "new subscribers get the current prediction immediately")
}

func TestSlowSubscriberSkipsIntermediates(t *testing.T) {
	s := newTestServer(&fakePipeline{})

	c := newClient(nil)
	require.True(t, s.hub.register(c))
	defer s.hub.unregister(c)

	for i := 0; i < 10; i++ {
		s.hub.broadcast(PredictionResponse{Index: i})
	}

	p := c.take()
	require.NotNil(t, p)
	assert.Equal(t, 9, p.Index, "only the newest value is pending")
	assert.Nil(t, c.take(), "slot drained")
}

func TestHubCloseAllRejectsNewClients(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	c := newClient(nil)
	require.True(t, s.hub.register(c))

	s.hub.closeAll()

	select {
	case <-c.done:
	default:
		t.Fatal("closeAll did not signal the client")
	}
	assert.False(t, s.hub.register(newClient(nil)))
}

func TestClientCloseDoneIsIdempotent(t *testing.T) {
	c := newClient(nil)

	// A peer disconnect and a hub shutdown can both try to stop the same
	// client; concurrent signals must not panic on a second close.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.closeDone()
		}()
	}
	wg.Wait()

	select {
	case <-c.done:
	default:
		t.Fatal("done channel not closed")
	}
}

func TestCloseAllAfterClientAlreadyStopped(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	c := newClient(nil)
	require.True(t, s.hub.register(c))

	c.closeDone()
	s.hub.closeAll()

	select {
	case <-c.done:
	default:
		t.Fatal("client not signalled")
	}
}

func waitForSubscribers(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.hub.mu.Lock()
		count := len(s.hub.clients)
		s.hub.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("subscriber never registered")
}
