package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/world"
)

func newTestServer(t *testing.T, cfg world.Config) (*Server, *world.World) {
	t.Helper()
	w, err := world.NewWorld(cfg, world.WithLogger(log.Discard()))
	require.NoError(t, err)
	return NewServer(w, "0", WithLogger(log.Discard())), w
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s, w := newTestServer(t, world.DefaultConfig())
	_, err := w.Spawn("")
	require.NoError(t, err)
	w.Step(0.05)

	code, body := do(t, s, "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["dogs"])
	assert.EqualValues(t, 1, body["tick"])
	assert.Equal(t, false, body["running"])
}

func TestDogLifecycle(t *testing.T) {
	cfg := world.DefaultConfig()
	cfg.MaxDogs = 1
	s, _ := newTestServer(t, cfg)

	code, dog := do(t, s, "POST", "/api/dogs", `{"name":"Bori"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Bori", dog["name"])
	id := dog["id"].(string)

	code, body := do(t, s, "POST", "/api/dogs", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["error"], "no room")

	code, body = do(t, s, "GET", "/api/dogs", "")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = do(t, s, "GET", "/api/dogs/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, body["id"])

	code, body = do(t, s, "POST", "/api/dogs/"+id+"/pin", `{"pinned":true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["pinned"])

	code, _ = do(t, s, "DELETE", "/api/dogs/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, body = do(t, s, "GET", "/api/dogs/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "not found")

	code, _ = do(t, s, "DELETE", "/api/dogs/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTrickEndpoint(t *testing.T) {
	s, w := newTestServer(t, world.DefaultConfig())
	dog, err := w.Spawn("")
	require.NoError(t, err)

	code, body := do(t, s, "POST", "/api/dogs/"+dog.ID+"/tricks/hand", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hand", body["trick"])
	clip := body["clip"].(map[string]any)
	assert.Equal(t, "Hand", clip["trigger"])
	assert.EqualValues(t, 3, clip["hold"])

	code, _ = do(t, s, "POST", "/api/dogs/"+dog.ID+"/tricks/backflip", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, "POST", "/api/dogs/nope/tricks/sit", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, s, "GET", "/api/tricks", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"hand", "sit", "down"}, body["tricks"])
}

func TestVoiceEndpoint(t *testing.T) {
	s, w := newTestServer(t, world.DefaultConfig())
	dog, err := w.Spawn("")
	require.NoError(t, err)

	code, body := do(t, s, "POST", "/api/dogs/"+dog.ID+"/voice", `{"text":"엎드려!"}`)
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]any)
	assert.Equal(t, "엎드려", result["command"])
	trick := body["trick"].(map[string]any)
	assert.Equal(t, "down", trick["trick"])

	code, _ = do(t, s, "POST", "/api/dogs/"+dog.ID+"/voice", `{"text":"hello world"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, "POST", "/api/dogs/"+dog.ID+"/voice", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, s, "GET", "/api/voice/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	metrics := body["metrics"].(map[string]any)
	assert.EqualValues(t, 2, metrics["transcripts"])
	assert.EqualValues(t, 0.5, body["match_rate"])
}

func TestEventsAndYard(t *testing.T) {
	s, w := newTestServer(t, world.DefaultConfig())
	_, err := w.Spawn("")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		w.Step(0.05)
	}

	code, body := do(t, s, "GET", "/api/events?limit=1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["events"], 1)

	code, _ = do(t, s, "GET", "/api/events?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, s, "GET", "/api/yard", "")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 60, body["cols"])
	assert.Len(t, body["cells"], 60)

	code, body = do(t, s, "GET", "/api/hubs", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "control")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t, world.DefaultConfig())
	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/state", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestStateAndEventFeeds(t *testing.T) {
	cfg := world.DefaultConfig()
	cfg.SnapshotEvery = 1
	w, err := world.NewWorld(cfg, world.WithLogger(log.Discard()))
	require.NoError(t, err)
	s := NewServer(w, "18110", WithLogger(log.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	dog, err := w.Spawn("Bori")
	require.NoError(t, err)

	state, _, err := websocket.DefaultDialer.Dial("ws://localhost:18110/ws/state", nil)
	require.NoError(t, err)
	defer state.Close()

	events, _, err := websocket.DefaultDialer.Dial("ws://localhost:18110/ws/events", nil)
	require.NoError(t, err)
	defer events.Close()

	read := func(ws *websocket.Conn) *protocol.Message {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		msg, err := protocol.ParseMessage(data)
		require.NoError(t, err)
		return msg
	}

	// Initial snapshot on connect
	msg := read(state)
	require.Equal(t, protocol.TypeState, msg.Type)
	snap, err := msg.GetStateData()
	require.NoError(t, err)
	require.Len(t, snap.Dogs, 1)
	assert.Equal(t, dog.ID, snap.Dogs[0].ID)

	// Event history replay starts with the spawn
	msg = read(events)
	require.Equal(t, protocol.TypeEvent, msg.Type)
	ev, err := msg.GetEventData()
	require.NoError(t, err)
	assert.Equal(t, "spawned", ev.Type)

	require.Eventually(t, func() bool { return s.StateHub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	w.Step(0.05)

	msg = read(state)
	require.Equal(t, protocol.TypeState, msg.Type)
	snap, err = msg.GetStateData()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Tick)
}

func TestStalledControllerDoesNotBlockWorld(t *testing.T) {
	w, err := world.NewWorld(world.DefaultConfig(), world.WithLogger(log.Discard()))
	require.NoError(t, err)
	s := NewServer(w, "18111", WithLogger(log.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	dog, err := w.Spawn("")
	require.NoError(t, err)

	// Connects and never reads
	stalled, _, err := websocket.DefaultDialer.Dial("ws://localhost:18111/ws/control/stalled", nil)
	require.NoError(t, err)
	defer stalled.Close()
	require.Eventually(t, func() bool { return s.Control().Count() == 1 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20000; i++ {
			w.Trick(dog.ID, "sit")
		}
		for i := 0; i < 400; i++ {
			w.Step(0.05)
		}
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("world stalled behind a controller that stopped reading")
	}
	assert.Equal(t, uint64(400), w.Tick())
}

func TestRecordEndpoints(t *testing.T) {
	cfg := world.DefaultConfig()
	cfg.Voice.MinRecordDuration = 20 * time.Millisecond
	s, w := newTestServer(t, cfg)
	dog, err := w.Spawn("")
	require.NoError(t, err)
	base := "/api/dogs/" + dog.ID + "/voice"

	code, _ := do(t, s, "POST", base+"/stop", "")
	assert.Equal(t, http.StatusBadRequest, code, "stop before start")

	code, body := do(t, s, "POST", base+"/start", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["recording"])

	code, body = do(t, s, "POST", base+"/stop", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "too short")

	time.Sleep(30 * time.Millisecond)
	code, body = do(t, s, "POST", base+"/stop", "")
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, body["duration"], 0.02)

	code, _ = do(t, s, "POST", base+"/start", "")
	assert.Equal(t, http.StatusConflict, code, "transcript still pending")

	code, _ = do(t, s, "POST", base, `{"text":"앉아"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, "POST", base+"/start", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, s, "POST", "/api/dogs/nope/voice/start", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetrics(t *testing.T) {
	s, w := newTestServer(t, world.DefaultConfig())
	_, err := w.Spawn("")
	require.NoError(t, err)
	w.Step(0.05)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "# TYPE togedaeng_dogs gauge")
	assert.Contains(t, text, "togedaeng_dogs 1\n")
	assert.Contains(t, text, "togedaeng_ticks 1\n")
	assert.Contains(t, text, "togedaeng_dogs_stuck 0\n")
}
