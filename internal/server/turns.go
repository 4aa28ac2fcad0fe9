package server

import "log"

// submitTurn accepts at most one submission per connected player per round.
// When the last outstanding submission arrives the room moves straight to
// PROCESSING; otherwise the collection timer keeps racing.
func (s *Server) submitTurn(sess *session, req submitTurnRequest) error {
	if !s.inRoom(sess) {
		return errNotInRoom
	}
	caption, err := validateCaption(req.Caption)
	if err != nil {
		return err
	}
	template, ok := templateByID(req.TemplateID)
	if !ok {
		return errUnknownTemplate
	}

	var (
		snap     map[string]any
		round    int
		complete bool
	)
	err = s.updateRoom(sess.room, func(room *Room) error {
		if room.Status != statusCollecting {
			return errWrongStatus
		}
		if _, ok := room.findPlayer(sess.id); !ok {
			return errNotInRoom
		}
		if req.TargetPlayerID == sess.id {
			return errSelfTarget
		}
		target, ok := room.findPlayer(req.TargetPlayerID)
		if !ok {
			return errUnknownTarget
		}
		if _, ok := room.submissionBy(sess.id); ok {
			return errDuplicateSubmission
		}
		room.Rounds[room.Round] = append(room.Rounds[room.Round], Submission{
			CreatorID:       sess.id,
			TargetID:        target.ID,
			TargetAvatarURL: target.AvatarURL,
			TemplateID:      template.ID,
			Caption:         caption,
		})
		round = room.Round
		complete = turnsComplete(room)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("turn submitted room=%s round=%d creator=%s template=%s", sess.room, round, sess.id, template.ID)
	s.hub.Broadcast(sess.room, serverEvent{evtRoomUpdate, snap})
	if complete {
		s.finishCollecting(sess.room, round, "all submitted")
	}
	return nil
}

// finishCollecting moves COLLECTING_TURNS -> PROCESSING and kicks off the
// generation barrier. Safe to call from the submit path, the timeout timer
// and the disconnect path; whichever lands first wins and the rest no-op.
func (s *Server) finishCollecting(code string, round int, reason string) {
	var (
		snap map[string]any
		jobs []generationJob
	)
	err := s.updateRoom(code, func(room *Room) error {
		if room.Status != statusCollecting || room.Round != round {
			return errWrongStatus
		}
		room.Status = statusProcessing
		jobs = generationJobs(room)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return
	}
	s.cancelRoomTimer(code)
	log.Printf("collection finished room=%s round=%d submissions=%d reason=%s", code, round, len(jobs), reason)
	s.hub.Broadcast(code, serverEvent{evtProcessingStart, map[string]any{}})
	s.hub.Broadcast(code, serverEvent{evtRoomUpdate, snap})
	s.runGeneration(code, round, jobs)
}
