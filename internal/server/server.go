package server

import (
	"net/http"
	"sync"
	"time"

	"meme-wars/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	registry  *Registry
	hub       *wsHub
	cfg       config.Config
	db        *gorm.DB
	generator Generator
	uploads   *uploadStore
	timersMu  sync.Mutex
	timers    map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		registry:  NewRegistry(),
		hub:       newWSHub(),
		cfg:       cfg,
		db:        conn,
		generator: newWorkerClient(cfg.WorkerURL, time.Duration(cfg.GenerationSeconds)*time.Second),
		uploads:   newUploadStore(time.Duration(cfg.UploadTTLSeconds) * time.Second),
		timers:    make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("POST /api/upload-temp", s.handleUploadTemp)
	mux.HandleFunc("GET /i/", s.handleServeUpload)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// inRoom reports whether the session's room binding is still live. A room
// can disappear behind a session's back (grace-timer teardown, last-leave
// teardown racing a broadcast), so a binding to a code the registry no
// longer knows is cleared here rather than left to block new commands.
func (s *Server) inRoom(sess *session) bool {
	if sess.room == "" {
		return false
	}
	if _, ok := s.registry.Get(sess.room); !ok {
		sess.room = ""
		return false
	}
	return true
}

// updateRoom runs fn with the room's lock held. Each room serializes its
// own mutations; rooms never block each other.
func (s *Server) updateRoom(code string, fn func(room *Room) error) error {
	room, ok := s.registry.Get(code)
	if !ok {
		return errRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return errRoomNotFound
	}
	return fn(room)
}
