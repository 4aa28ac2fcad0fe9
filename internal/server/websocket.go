package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// session is the explicit per-connection context passed to every handler:
// one live connection, one player identity, at most one room. Only the
// connection's read loop touches it, so it needs no lock of its own.
type session struct {
	id   string
	conn *websocket.Conn
	room string
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// wsHub fans room events out to every connection in the room. Writes are
// serialized per connection; a failing connection is dropped rather than
// allowed to block the room.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*wsClient
	groups  map[string]map[*websocket.Conn]struct{}
	member  map[*websocket.Conn]string
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[*websocket.Conn]*wsClient),
		groups:  make(map[string]map[*websocket.Conn]struct{}),
		member:  make(map[*websocket.Conn]string),
	}
}

func (h *wsHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &wsClient{conn: conn}
}

func (h *wsHub) Join(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[code] = group
	}
	group[conn] = struct{}{}
	h.member[conn] = code
}

func (h *wsHub) Leave(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(code, conn)
}

func (h *wsHub) leaveLocked(code string, conn *websocket.Conn) {
	if group, ok := h.groups[code]; ok {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
	delete(h.member, conn)
}

// Drop removes a connection entirely. Used on disconnect and on write
// failure.
func (h *wsHub) Drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if code, ok := h.member[conn]; ok {
		h.leaveLocked(code, conn)
	}
	delete(h.clients, conn)
	_ = conn.Close()
}

// DropGroup forgets a room's fan-out group without closing the
// connections; their read loops own the close.
func (h *wsHub) DropGroup(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.groups[code] {
		delete(h.member, conn)
	}
	delete(h.groups, code)
}

func (h *wsHub) Send(conn *websocket.Conn, event serverEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	client, ok := h.clients[conn]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := client.write(data); err != nil {
		h.Drop(conn)
	}
}

func (h *wsHub) Broadcast(code string, event serverEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.groups[code]))
	for conn := range h.groups[code] {
		if client, ok := h.clients[conn]; ok {
			clients = append(clients, client)
		}
	}
	h.mu.Unlock()
	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.Drop(client.conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sess := &session{id: uuid.NewString(), conn: conn}
	s.hub.Register(conn)
	log.Printf("ws connected player=%s remote=%s", sess.id, r.RemoteAddr)
	go s.readLoop(sess)
}

func (s *Server) readLoop(sess *session) {
	defer func() {
		s.leaveRoom(sess)
		s.hub.Drop(sess.conn)
		log.Printf("ws disconnected player=%s", sess.id)
	}()
	for {
		var event clientEvent
		if err := sess.conn.ReadJSON(&event); err != nil {
			return
		}
		s.dispatch(sess, event)
	}
}

func (s *Server) dispatch(sess *session, event clientEvent) {
	var err error
	switch event.Event {
	case evtCreateRoom:
		var req createRoomRequest
		if err = decodeEvent(event.Data, &req); err == nil {
			err = s.createRoom(sess, req)
		}
	case evtJoinRoom:
		var req joinRoomRequest
		if err = decodeEvent(event.Data, &req); err == nil {
			err = s.joinRoom(sess, req)
		}
	case evtLeaveRoom:
		s.leaveRoom(sess)
	case evtToggleReady:
		err = s.toggleReady(sess)
	case evtStartGame:
		err = s.startGame(sess)
	case evtSubmitTurn:
		var req submitTurnRequest
		if err = decodeEvent(event.Data, &req); err == nil {
			err = s.submitTurn(sess, req)
		}
	case evtSubmitVote:
		var req submitVoteRequest
		if err = decodeEvent(event.Data, &req); err == nil {
			err = s.submitVote(sess, req)
		}
	case evtNextRound:
		err = s.nextRound(sess)
	default:
		err = invalidInputf("unknown event %q", event.Event)
	}
	if err != nil {
		s.sendError(sess, err)
	}
}

func (s *Server) send(sess *session, event serverEvent) {
	s.hub.Send(sess.conn, event)
}

func (s *Server) sendError(sess *session, err error) {
	s.send(sess, serverEvent{evtError, map[string]any{
		"kind":    errorKind(err),
		"message": err.Error(),
	}})
}
