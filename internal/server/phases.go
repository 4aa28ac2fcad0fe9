package server

import "log"

// The room lifecycle:
//
//	LOBBY -> COLLECTING_TURNS -> PROCESSING -> VOTING -> ROUND_RESULT
//	                ^                                         |
//	                +------------- next_round ----------------+
//	                                                          v
//	                                                      GAME_OVER
//
// startGame and nextRound are host commands; the other transitions are
// driven by completion predicates racing their timeout timers.

func (s *Server) startGame(sess *session) error {
	if !s.inRoom(sess) {
		return errNotInRoom
	}
	var snap map[string]any
	err := s.updateRoom(sess.room, func(room *Room) error {
		if room.HostID != sess.id {
			return errNotHost
		}
		if room.Status != statusLobby {
			return errWrongStatus
		}
		if len(room.Players) < minPlayers {
			return errInsufficientPlayers
		}
		for i := range room.Players {
			if !room.Players[i].Ready {
				return errNotAllReady
			}
		}
		room.Status = statusCollecting
		room.Round = 1
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("game started room=%s round=1", sess.room)
	s.hub.Broadcast(sess.room, serverEvent{evtRoomUpdate, snap})
	s.scheduleRoomTimer(sess.room, statusCollecting, 1)
	s.persistEvent(sess.room, "game_started", EventPayload{Round: 1})
	return nil
}

func (s *Server) nextRound(sess *session) error {
	if !s.inRoom(sess) {
		return errNotInRoom
	}
	var (
		snap  map[string]any
		round int
	)
	err := s.updateRoom(sess.room, func(room *Room) error {
		if room.HostID != sess.id {
			return errNotHost
		}
		if room.Status != statusRoundResult {
			return errWrongStatus
		}
		if room.Round >= room.MaxRounds {
			return errNoNextRound
		}
		room.Round++
		room.Status = statusCollecting
		for i := range room.Players {
			room.Players[i].Ready = false
		}
		round = room.Round
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("round started room=%s round=%d", sess.room, round)
	s.hub.Broadcast(sess.room, serverEvent{evtRoomUpdate, snap})
	s.scheduleRoomTimer(sess.room, statusCollecting, round)
	s.persistEvent(sess.room, "round_started", EventPayload{Round: round})
	return nil
}

// finishGame performs the automatic ROUND_RESULT -> GAME_OVER transition
// of the final round and hands the room to the grace timer.
func (s *Server) finishGame(code string, round int) {
	var snap map[string]any
	err := s.updateRoom(code, func(room *Room) error {
		if room.Status != statusRoundResult || room.Round != round {
			return errWrongStatus
		}
		room.Status = statusGameOver
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return
	}
	log.Printf("game over room=%s rounds=%d", code, round)
	s.hub.Broadcast(code, serverEvent{evtRoomUpdate, snap})
	s.scheduleRoomTimer(code, statusGameOver, round)
	s.persistGameOver(code)
}
