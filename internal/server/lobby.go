package server

import (
	"log"
	"time"
)

func (s *Server) createRoom(sess *session, req createRoomRequest) error {
	if s.inRoom(sess) {
		return errAlreadyInRoom
	}
	nickname, err := validateNickname(req.Nickname)
	if err != nil {
		return err
	}
	avatarURL, err := validateAvatarURL(req.AvatarURL)
	if err != nil {
		return err
	}

	host := Player{
		ID:        sess.id,
		Nickname:  nickname,
		AvatarURL: avatarURL,
		JoinedAt:  time.Now().UTC(),
	}
	room, err := s.registry.Create(host, s.cfg.Rounds)
	if err != nil {
		return err
	}
	sess.room = room.Code
	s.hub.Join(room.Code, sess.conn)

	var snap map[string]any
	_ = s.updateRoom(room.Code, func(room *Room) error {
		snap = buildSnapshot(room)
		return nil
	})
	log.Printf("room created room=%s host=%s nickname=%s", room.Code, sess.id, nickname)
	s.send(sess, serverEvent{evtRoomCreated, map[string]any{"room_code": room.Code}})
	s.hub.Broadcast(room.Code, serverEvent{evtRoomUpdate, snap})
	s.persistRoom(room.Code)
	return nil
}

func (s *Server) joinRoom(sess *session, req joinRoomRequest) error {
	if s.inRoom(sess) {
		return errAlreadyInRoom
	}
	nickname, err := validateNickname(req.Nickname)
	if err != nil {
		return err
	}
	avatarURL, err := validateAvatarURL(req.AvatarURL)
	if err != nil {
		return err
	}

	var snap map[string]any
	err = s.updateRoom(req.RoomCode, func(room *Room) error {
		if room.Status != statusLobby {
			return errRoomNotJoinable
		}
		if len(room.Players) >= maxPlayers {
			return errRoomFull
		}
		if room.hasNickname(nickname) {
			return errDuplicateNickname
		}
		room.Players = append(room.Players, Player{
			ID:        sess.id,
			Nickname:  nickname,
			AvatarURL: avatarURL,
			JoinedAt:  time.Now().UTC(),
		})
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	sess.room = req.RoomCode
	s.hub.Join(req.RoomCode, sess.conn)
	log.Printf("player joined room=%s player=%s nickname=%s", req.RoomCode, sess.id, nickname)
	s.hub.Broadcast(req.RoomCode, serverEvent{evtRoomUpdate, snap})
	s.persistPlayer(req.RoomCode, sess.id)
	return nil
}

func (s *Server) toggleReady(sess *session) error {
	if !s.inRoom(sess) {
		return errNotInRoom
	}
	var snap map[string]any
	err := s.updateRoom(sess.room, func(room *Room) error {
		player, ok := room.findPlayer(sess.id)
		if !ok {
			return errNotInRoom
		}
		player.Ready = !player.Ready
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(sess.room, serverEvent{evtRoomUpdate, snap})
	return nil
}

// leaveRoom removes the player from their room, drops their outstanding
// obligations, and re-checks the completion predicate of whatever barrier
// the room is waiting on so an absent participant never stalls the round.
// Idempotent: a session with no room is a no-op.
func (s *Server) leaveRoom(sess *session) {
	code := sess.room
	if code == "" {
		return
	}
	sess.room = ""
	s.hub.Leave(code, sess.conn)

	var (
		snap      map[string]any
		empty     bool
		status    string
		round     int
		turnsDone bool
		votesDone bool
	)
	err := s.updateRoom(code, func(room *Room) error {
		if !room.removePlayer(sess.id) {
			return errNotInRoom
		}
		if len(room.Players) == 0 {
			empty = true
			return nil
		}
		if room.HostID == sess.id {
			room.HostID = room.Players[0].ID
			log.Printf("host handover room=%s new_host=%s", code, room.HostID)
		}
		status = room.Status
		round = room.Round
		turnsDone = status == statusCollecting && turnsComplete(room)
		votesDone = status == statusVoting && votingComplete(room)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return
	}
	log.Printf("player left room=%s player=%s", code, sess.id)
	if empty {
		s.teardownRoom(code, "empty")
		return
	}
	s.hub.Broadcast(code, serverEvent{evtRoomUpdate, snap})
	if turnsDone {
		s.finishCollecting(code, round, "disconnect")
	}
	if votesDone {
		s.closeRound(code, round, "disconnect")
	}
}

func (s *Server) teardownRoom(code, reason string) {
	room, ok := s.registry.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	room.closed = true
	room.mu.Unlock()
	s.registry.Remove(code)
	s.cancelRoomTimer(code)
	s.hub.DropGroup(code)
	log.Printf("room torn down room=%s reason=%s", code, reason)
	s.persistTeardown(room, reason)
}
