package server

import (
	"strings"
	"testing"
	"time"
)

func TestRegistryCreateAssignsUniqueCodes(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := reg.Create(Player{ID: "host", Nickname: "Ada", JoinedAt: time.Now()}, 4)
		if err != nil {
			t.Fatalf("create room %d: %v", i, err)
		}
		if len(room.Code) != 4 {
			t.Fatalf("expected 4-char code, got %q", room.Code)
		}
		if seen[room.Code] {
			t.Fatalf("duplicate code %s", room.Code)
		}
		seen[room.Code] = true
	}
	if reg.Count() != 50 {
		t.Fatalf("expected 50 rooms, got %d", reg.Count())
	}
}

func TestRegistryCreateInitialState(t *testing.T) {
	reg := NewRegistry()
	host := Player{ID: "host", Nickname: "Ada", JoinedAt: time.Now()}
	room, err := reg.Create(host, 4)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Status != statusLobby {
		t.Fatalf("expected LOBBY, got %s", room.Status)
	}
	if room.HostID != "host" {
		t.Fatalf("expected host id host, got %s", room.HostID)
	}
	if room.MaxRounds != 4 {
		t.Fatalf("expected 4 rounds, got %d", room.MaxRounds)
	}
	if len(room.Players) != 1 || room.Players[0].ID != "host" {
		t.Fatalf("expected host as sole member, got %#v", room.Players)
	}
	if room.Round != 0 {
		t.Fatalf("expected round 0 before start, got %d", room.Round)
	}
}

func TestRegistryGetAndRemove(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.Create(Player{ID: "host"}, 4)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, ok := reg.Get(room.Code); !ok {
		t.Fatalf("expected room %s to be registered", room.Code)
	}
	reg.Remove(room.Code)
	if _, ok := reg.Get(room.Code); ok {
		t.Fatalf("expected room %s to be gone", room.Code)
	}
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Count())
	}
}

func TestNewRoomCodeAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for i := 0; i < 100; i++ {
		code := newRoomCode()
		if len(code) != 4 {
			t.Fatalf("expected 4-char code, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}
