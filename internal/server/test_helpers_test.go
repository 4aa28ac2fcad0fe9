package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meme-wars/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// testConfig disables the phase timers so tests drive every transition
// through the completion predicates or by calling the timeout paths
// directly.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.TurnSeconds = 0
	cfg.VoteSeconds = 0
	cfg.RoomGraceSeconds = 0
	return cfg
}

func newGameServer(t *testing.T) *Server {
	t.Helper()
	return New(nil, testConfig())
}

func newTestSession(id string) *session {
	return &session{id: id}
}

// createTestRoom creates a room with one session per nickname. The first
// session is the host.
func createTestRoom(t *testing.T, s *Server, nicknames ...string) (string, []*session) {
	t.Helper()
	if len(nicknames) == 0 {
		t.Fatal("createTestRoom needs at least one nickname")
	}
	sessions := make([]*session, 0, len(nicknames))
	host := newTestSession("player-0")
	if err := s.createRoom(host, createRoomRequest{Nickname: nicknames[0]}); err != nil {
		t.Fatalf("create room: %v", err)
	}
	sessions = append(sessions, host)
	code := host.room
	for i, nickname := range nicknames[1:] {
		sess := newTestSession("player-" + string(rune('1'+i)))
		if err := s.joinRoom(sess, joinRoomRequest{RoomCode: code, Nickname: nickname}); err != nil {
			t.Fatalf("join room: %v", err)
		}
		sessions = append(sessions, sess)
	}
	return code, sessions
}

func startTestGame(t *testing.T, s *Server, sessions []*session) {
	t.Helper()
	for _, sess := range sessions {
		if err := s.toggleReady(sess); err != nil {
			t.Fatalf("toggle ready: %v", err)
		}
	}
	if err := s.startGame(sessions[0]); err != nil {
		t.Fatalf("start game: %v", err)
	}
}

func roomStatus(t *testing.T, s *Server, code string) string {
	t.Helper()
	status := ""
	err := s.updateRoom(code, func(room *Room) error {
		status = room.Status
		return nil
	})
	if err != nil {
		t.Fatalf("read room %s: %v", code, err)
	}
	return status
}

// waitForRoomStatus polls until the room reaches the wanted status. Used
// where generation goroutines advance the room asynchronously.
func waitForRoomStatus(t *testing.T, s *Server, code, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if roomStatus(t, s, code) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached status %s, still %s", code, want, roomStatus(t, s, code))
}

type fakeGenerator struct {
	url   string
	err   error
	delay time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, templateURL, sourceURL, caption string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}
