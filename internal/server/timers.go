package server

import "time"

// Timers race against the completion signals of COLLECTING_TURNS and
// VOTING, and run out the grace period after GAME_OVER. One timer per room;
// scheduling replaces any earlier one, and every expiry handler re-checks
// status and round under the room lock so a late firing is harmless.

func (s *Server) scheduleRoomTimer(code, status string, round int) {
	duration := s.statusDuration(status)
	if duration <= 0 {
		s.cancelRoomTimer(code)
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[code]; ok {
		existing.Stop()
	}
	s.timers[code] = time.AfterFunc(duration, func() {
		s.roomTimeout(code, status, round)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelRoomTimer(code string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[code]; ok {
		timer.Stop()
		delete(s.timers, code)
	}
}

func (s *Server) statusDuration(status string) time.Duration {
	switch status {
	case statusCollecting:
		return time.Duration(s.cfg.TurnSeconds) * time.Second
	case statusVoting:
		return time.Duration(s.cfg.VoteSeconds) * time.Second
	case statusGameOver:
		return time.Duration(s.cfg.RoomGraceSeconds) * time.Second
	default:
		return 0
	}
}

func (s *Server) roomTimeout(code, status string, round int) {
	switch status {
	case statusCollecting:
		s.finishCollecting(code, round, "timeout")
	case statusVoting:
		s.closeRound(code, round, "timeout")
	case statusGameOver:
		s.teardownRoom(code, "grace period elapsed")
	}
}
