package server

import "log"

// submitVote records one star rating. Self-votes, duplicate
// (voter, submission) pairs, out-of-range ratings and votes for unknown
// submissions are rejected without touching room state.
func (s *Server) submitVote(sess *session, req submitVoteRequest) error {
	if !s.inRoom(sess) {
		return errNotInRoom
	}
	if err := validateStars(req.Stars); err != nil {
		return err
	}

	var (
		snap   map[string]any
		round  int
		closed bool
	)
	err := s.updateRoom(sess.room, func(room *Room) error {
		if room.Status != statusVoting {
			return errWrongStatus
		}
		if _, ok := room.findPlayer(sess.id); !ok {
			return errNotInRoom
		}
		if req.TargetCreatorID == sess.id {
			return errSelfVote
		}
		sub, ok := room.submissionBy(req.TargetCreatorID)
		if !ok {
			return errUnknownSubmission
		}
		if sub.hasVoteFrom(sess.id) {
			return errDuplicateVote
		}
		sub.Votes = append(sub.Votes, Vote{VoterID: sess.id, Stars: req.Stars})
		round = room.Round
		closed = votingComplete(room)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("vote cast room=%s round=%d voter=%s target=%s stars=%d", sess.room, round, sess.id, req.TargetCreatorID, req.Stars)
	s.hub.Broadcast(sess.room, serverEvent{evtRoomUpdate, snap})
	if closed {
		s.closeRound(sess.room, round, "all votes in")
	}
	return nil
}

// closeRound moves VOTING -> ROUND_RESULT and applies scores. Reached from
// the vote path, the voting timeout and the disconnect path; the status and
// round guards make the losers of that race no-ops. The final round chains
// into GAME_OVER automatically.
func (s *Server) closeRound(code string, round int, reason string) {
	var (
		snap     map[string]any
		final    bool
		archived []Submission
	)
	err := s.updateRoom(code, func(room *Room) error {
		if room.Status != statusVoting || room.Round != round {
			return errWrongStatus
		}
		applyScores(room)
		room.Status = statusRoundResult
		final = room.Round >= room.MaxRounds
		archived = append([]Submission(nil), room.currentSubmissions()...)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return
	}
	s.cancelRoomTimer(code)
	log.Printf("round closed room=%s round=%d reason=%s", code, round, reason)
	s.hub.Broadcast(code, serverEvent{evtRoundResult, map[string]any{"round": round}})
	s.hub.Broadcast(code, serverEvent{evtRoomUpdate, snap})
	s.persistRound(code, round, archived)
	if final {
		s.finishGame(code, round)
	}
}

// applyScores adds each submission's round score (the sum of its received
// stars) to its creator's cumulative score. Missing votes contribute
// nothing; a player with no submission scores zero for the round.
func applyScores(room *Room) {
	subs := room.currentSubmissions()
	for i := range subs {
		creator, ok := room.findPlayer(subs[i].CreatorID)
		if !ok {
			continue
		}
		creator.Score += subs[i].roundScore()
	}
}
