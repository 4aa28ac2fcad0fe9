package server

import (
	"encoding/json"
	"errors"
	"log"

	"meme-wars/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The archive records finished play for leaderboards and postmortems.
// Rooms live entirely in memory; a nil db switches the archive off and
// every persist call becomes a no-op. Writes run on the command path,
// fail soft, and never affect room state.

type EventPayload struct {
	RoomCode string         `json:"room_code,omitempty"`
	PlayerID string         `json:"player_id,omitempty"`
	Nickname string         `json:"nickname,omitempty"`
	Round    int            `json:"round,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Scores   map[string]int `json:"scores,omitempty"`
}

func (s *Server) persistRoom(code string) {
	if s.db == nil {
		return
	}
	var (
		rounds  int
		host    Player
		hasHost bool
	)
	err := s.updateRoom(code, func(room *Room) error {
		rounds = room.MaxRounds
		if len(room.Players) > 0 {
			host = room.Players[0]
			hasHost = true
		}
		return nil
	})
	if err != nil {
		return
	}
	record := db.Room{Code: code, Status: statusLobby, Rounds: rounds}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("persist room failed room=%s error=%v", code, err)
		return
	}
	_ = s.updateRoom(code, func(room *Room) error {
		room.DBID = record.ID
		return nil
	})
	if hasHost {
		s.persistPlayerRecord(code, record.ID, host, true)
	}
	s.persistEvent(code, "room_created", EventPayload{RoomCode: code})
}

func (s *Server) persistPlayer(code, playerID string) {
	if s.db == nil {
		return
	}
	var (
		player   Player
		roomDBID uint
		isHost   bool
	)
	err := s.updateRoom(code, func(room *Room) error {
		found, ok := room.findPlayer(playerID)
		if !ok {
			return errNotInRoom
		}
		player = *found
		roomDBID = room.DBID
		isHost = room.HostID == playerID
		return nil
	})
	if err != nil || roomDBID == 0 {
		return
	}
	s.persistPlayerRecord(code, roomDBID, player, isHost)
}

func (s *Server) persistPlayerRecord(code string, roomDBID uint, player Player, isHost bool) {
	record := db.Player{
		RoomID:    roomDBID,
		PlayerID:  player.ID,
		Nickname:  player.Nickname,
		AvatarURL: player.AvatarURL,
		IsHost:    isHost,
		JoinedAt:  player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			if existing, lookupErr := s.findPlayerDBID(roomDBID, player.Nickname); lookupErr == nil {
				record.ID = existing
			}
		} else {
			log.Printf("persist player failed room=%s player=%s error=%v", code, player.ID, err)
			return
		}
	}
	_ = s.updateRoom(code, func(room *Room) error {
		if found, ok := room.findPlayer(player.ID); ok {
			found.DBID = record.ID
		}
		return nil
	})
	s.persistEvent(code, "player_joined", EventPayload{PlayerID: player.ID, Nickname: player.Nickname})
}

func (s *Server) findPlayerDBID(roomDBID uint, nickname string) (uint, error) {
	var record db.Player
	err := s.db.Where("room_id = ? AND nickname = ?", roomDBID, nickname).First(&record).Error
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

// persistRound archives the closed round's submissions and votes, taken
// from the copy captured under the room lock at closure.
func (s *Server) persistRound(code string, round int, subs []Submission) {
	if s.db == nil {
		return
	}
	roomDBID := s.roomDBID(code)
	if roomDBID == 0 {
		return
	}
	for i := range subs {
		record := db.Submission{
			RoomID:     roomDBID,
			Round:      round,
			CreatorID:  subs[i].CreatorID,
			TargetID:   subs[i].TargetID,
			TemplateID: subs[i].TemplateID,
			Caption:    subs[i].Caption,
			ImageURL:   subs[i].ImageURL,
			Failed:     subs[i].Failed,
			Stars:      subs[i].roundScore(),
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			log.Printf("persist submission failed room=%s round=%d error=%v", code, round, err)
			continue
		}
		for _, vote := range subs[i].Votes {
			voteRecord := db.Vote{
				SubmissionID: record.ID,
				VoterID:      vote.VoterID,
				Stars:        vote.Stars,
			}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&voteRecord).Error; err != nil {
				log.Printf("persist vote failed room=%s round=%d error=%v", code, round, err)
			}
		}
	}
	s.persistEvent(code, "round_closed", EventPayload{Round: round})
}

func (s *Server) persistGameOver(code string) {
	if s.db == nil {
		return
	}
	var (
		roomDBID uint
		scores   = make(map[string]int)
	)
	err := s.updateRoom(code, func(room *Room) error {
		roomDBID = room.DBID
		for i := range room.Players {
			scores[room.Players[i].Nickname] = room.Players[i].Score
		}
		return nil
	})
	if err != nil || roomDBID == 0 {
		return
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", roomDBID).Update("status", statusGameOver).Error; err != nil {
		log.Printf("persist game over failed room=%s error=%v", code, err)
	}
	s.persistEvent(code, "game_over", EventPayload{Scores: scores})
	for _, nickname := range sortedKeys(scores) {
		if err := s.db.Model(&db.Player{}).
			Where("room_id = ? AND nickname = ?", roomDBID, nickname).
			Update("score", scores[nickname]).Error; err != nil {
			log.Printf("persist score failed room=%s nickname=%s error=%v", code, nickname, err)
		}
	}
}

// persistTeardown runs after the room left the registry, so it works on
// the room pointer directly.
func (s *Server) persistTeardown(room *Room, reason string) {
	if s.db == nil {
		return
	}
	room.mu.Lock()
	roomDBID := room.DBID
	room.mu.Unlock()
	if roomDBID == 0 {
		return
	}
	s.persistEventRecord(roomDBID, "room_closed", EventPayload{Reason: reason})
}

func (s *Server) persistEvent(code, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	s.persistEventRecord(s.roomDBID(code), eventType, payload)
}

func (s *Server) persistEventRecord(roomDBID uint, eventType string, payload EventPayload) {
	if roomDBID == 0 {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	record := db.Event{
		RoomID:  roomDBID,
		Type:    eventType,
		Payload: datatypes.JSON(encoded),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("persist event failed type=%s error=%v", eventType, err)
	}
}

func (s *Server) roomDBID(code string) uint {
	var roomDBID uint
	_ = s.updateRoom(code, func(room *Room) error {
		roomDBID = room.DBID
		return nil
	})
	return roomDBID
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
