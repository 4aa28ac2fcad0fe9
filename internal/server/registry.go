package server

import (
	"sync"
	"time"
)

// codeAttempts bounds the search for a free room code. With a 32-char
// alphabet and 4-char codes the space holds 2^20 codes, so hitting the
// bound means the registry is effectively full.
const codeAttempts = 64

// Registry is the process-wide table of active rooms. Its lock only guards
// the code table; room state has its own per-room lock, so joins to
// different rooms never serialize against each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create allocates a fresh code and registers a room in LOBBY status with
// host as its sole member.
func (reg *Registry) Create(host Player, maxRounds int) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := ""
	for attempt := 0; attempt < codeAttempts; attempt++ {
		candidate := newRoomCode()
		if _, taken := reg.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, errCodeSpaceExhausted
	}

	room := &Room{
		Code:      code,
		HostID:    host.ID,
		Status:    statusLobby,
		MaxRounds: maxRounds,
		Players:   []Player{host},
		Rounds:    make(map[int][]Submission),
		CreatedAt: time.Now().UTC(),
	}
	reg.rooms[code] = room
	return room, nil
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
