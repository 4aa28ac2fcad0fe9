package server

import (
	"testing"
	"time"
)

func TestCreateRoomRegistersHost(t *testing.T) {
	s := newGameServer(t)
	host := newTestSession("host")
	if err := s.createRoom(host, createRoomRequest{Nickname: "Ada", AvatarURL: "/i/ada"}); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if host.room == "" {
		t.Fatal("expected session to be bound to the new room")
	}
	err := s.updateRoom(host.room, func(room *Room) error {
		if room.Status != statusLobby {
			t.Fatalf("expected LOBBY, got %s", room.Status)
		}
		if room.HostID != "host" {
			t.Fatalf("expected host id host, got %s", room.HostID)
		}
		if len(room.Players) != 1 || room.Players[0].AvatarURL != "/i/ada" {
			t.Fatalf("unexpected players %#v", room.Players)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read room: %v", err)
	}
}

func TestCreateRoomRejectsSecondRoom(t *testing.T) {
	s := newGameServer(t)
	host := newTestSession("host")
	if err := s.createRoom(host, createRoomRequest{Nickname: "Ada"}); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := s.createRoom(host, createRoomRequest{Nickname: "Ada"}); err != errAlreadyInRoom {
		t.Fatalf("expected already-in-room error, got %v", err)
	}
}

func TestJoinRoomValidations(t *testing.T) {
	s := newGameServer(t)
	code, _ := createTestRoom(t, s, "Ada")

	if err := s.joinRoom(newTestSession("x"), joinRoomRequest{RoomCode: "ZZZZ", Nickname: "Bob"}); err != errRoomNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := s.joinRoom(newTestSession("x"), joinRoomRequest{RoomCode: code, Nickname: "Ada"}); err != errDuplicateNickname {
		t.Fatalf("expected duplicate-nickname error, got %v", err)
	}
	if err := s.joinRoom(newTestSession("x"), joinRoomRequest{RoomCode: code, Nickname: ""}); err == nil {
		t.Fatal("expected blank nickname to be rejected")
	}
}

func TestJoinRoomEnforcesCapacity(t *testing.T) {
	s := newGameServer(t)
	code, _ := createTestRoom(t, s, "Ada", "Bob", "Cleo", "Dana")
	err := s.joinRoom(newTestSession("extra"), joinRoomRequest{RoomCode: code, Nickname: "Eve"})
	if err != errRoomFull {
		t.Fatalf("expected room-full error, got %v", err)
	}
}

func TestJoinRoomRejectsStartedGame(t *testing.T) {
	s := newGameServer(t)
	code, sessions := createTestRoom(t, s, "Ada", "Bob")
	startTestGame(t, s, sessions)
	err := s.joinRoom(newTestSession("late"), joinRoomRequest{RoomCode: code, Nickname: "Cleo"})
	if err != errRoomNotJoinable {
		t.Fatalf("expected not-joinable error, got %v", err)
	}
}

func TestToggleReadyFlips(t *testing.T) {
	s := newGameServer(t)
	code, sessions := createTestRoom(t, s, "Ada", "Bob")
	if err := s.toggleReady(sessions[1]); err != nil {
		t.Fatalf("toggle ready: %v", err)
	}
	ready := func() bool {
		value := false
		_ = s.updateRoom(code, func(room *Room) error {
			player, _ := room.findPlayer(sessions[1].id)
			value = player.Ready
			return nil
		})
		return value
	}
	if !ready() {
		t.Fatal("expected ready after first toggle")
	}
	if err := s.toggleReady(sessions[1]); err != nil {
		t.Fatalf("toggle ready: %v", err)
	}
	if ready() {
		t.Fatal("expected not ready after second toggle")
	}
}

func TestLeaveRoomHandsHostOver(t *testing.T) {
	s := newGameServer(t)
	code, sessions := createTestRoom(t, s, "Ada", "Bob", "Cleo")
	s.leaveRoom(sessions[0])
	if sessions[0].room != "" {
		t.Fatal("expected session to be unbound")
	}
	err := s.updateRoom(code, func(room *Room) error {
		if room.HostID != sessions[1].id {
			t.Fatalf("expected host handover to %s, got %s", sessions[1].id, room.HostID)
		}
		if len(room.Players) != 2 {
			t.Fatalf("expected 2 players, got %d", len(room.Players))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read room: %v", err)
	}
}

func TestLeaveRoomIsIdempotent(t *testing.T) {
	s := newGameServer(t)
	_, sessions := createTestRoom(t, s, "Ada", "Bob")
	s.leaveRoom(sessions[1])
	s.leaveRoom(sessions[1])
}

func TestLastLeaveTearsRoomDown(t *testing.T) {
	s := newGameServer(t)
	code, sessions := createTestRoom(t, s, "Ada", "Bob")
	s.leaveRoom(sessions[0])
	s.leaveRoom(sessions[1])
	if _, ok := s.registry.Get(code); ok {
		t.Fatalf("expected room %s to be torn down", code)
	}
}

func TestGraceTimerTearsRoomDownAndFreesSessions(t *testing.T) {
	s := newGameServer(t)
	s.cfg.RoomGraceSeconds = 1
	s.generator = &fakeGenerator{url: "https://cdn.example/meme.png"}
	code, sessions := createTestRoom(t, s, "Ada", "Bob")
	startTestGame(t, s, sessions)

	for round := 1; round <= s.cfg.Rounds; round++ {
		playRound(t, s, code, sessions)
		if round < s.cfg.Rounds {
			if err := s.nextRound(sessions[0]); err != nil {
				t.Fatalf("next round after %d: %v", round, err)
			}
		}
	}
	if got := roomStatus(t, s, code); got != statusGameOver {
		t.Fatalf("expected GAME_OVER, got %s", got)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := s.registry.Get(code); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected grace timer to tear the room down")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The sessions still carry the dead code; a fresh create must not be
	// rejected as already-in-room.
	if err := s.createRoom(sessions[0], createRoomRequest{Nickname: "Ada"}); err != nil {
		t.Fatalf("create room after teardown: %v", err)
	}
	if sessions[0].room == "" || sessions[0].room == code {
		t.Fatalf("expected a fresh room binding, got %q", sessions[0].room)
	}
	err := s.joinRoom(sessions[1], joinRoomRequest{RoomCode: sessions[0].room, Nickname: "Bob"})
	if err != nil {
		t.Fatalf("join room after teardown: %v", err)
	}
}

func TestStaleRoomBindingClearedOnCommand(t *testing.T) {
	s := newGameServer(t)
	code, sessions := createTestRoom(t, s, "Ada", "Bob")
	s.teardownRoom(code, "test")

	if err := s.toggleReady(sessions[0]); err != errNotInRoom {
		t.Fatalf("expected not-in-room error, got %v", err)
	}
	if sessions[0].room != "" {
		t.Fatalf("expected binding cleared, still %q", sessions[0].room)
	}
	if err := s.createRoom(sessions[1], createRoomRequest{Nickname: "Bob"}); err != nil {
		t.Fatalf("create room with stale binding: %v", err)
	}
}

func TestLeaveDuringCollectionCompletesBarrier(t *testing.T) {
	s := newGameServer(t)
	s.generator = &fakeGenerator{url: "https://cdn.example/meme.png"}
	code, sessions := createTestRoom(t, s, "Ada", "Bob", "Cleo")
	startTestGame(t, s, sessions)

	submit := func(sess *session, target *session) {
		t.Helper()
		err := s.submitTurn(sess, submitTurnRequest{
			TemplateID:     "drake",
			TargetPlayerID: target.id,
			Caption:        "caption",
		})
		if err != nil {
			t.Fatalf("submit turn: %v", err)
		}
	}
	submit(sessions[0], sessions[1])
	submit(sessions[1], sessions[2])

	// Cleo never submits; her leave removes the last outstanding turn.
	s.leaveRoom(sessions[2])
	waitForRoomStatus(t, s, code, statusVoting)
}
