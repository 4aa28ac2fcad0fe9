package server

import (
	"sync"
	"time"
)

const (
	statusLobby       = "LOBBY"
	statusCollecting  = "COLLECTING_TURNS"
	statusProcessing  = "PROCESSING"
	statusVoting      = "VOTING"
	statusRoundResult = "ROUND_RESULT"
	statusGameOver    = "GAME_OVER"
)

const (
	minPlayers = 2
	maxPlayers = 4
)

type Player struct {
	ID        string
	Nickname  string
	AvatarURL string
	Ready     bool
	Score     int
	JoinedAt  time.Time
	DBID      uint
}

type Vote struct {
	VoterID string
	Stars   int
}

type Submission struct {
	CreatorID       string
	TargetID        string
	TargetAvatarURL string
	TemplateID      string
	Caption         string
	ImageURL        string
	Failed          bool
	Resolved        bool
	Votes           []Vote
	DBID            uint
}

// Room is one isolated game session. All fields are guarded by mu; every
// mutation goes through Server.updateRoom so state transitions are atomic
// with respect to the predicates that guard them.
type Room struct {
	mu        sync.Mutex
	closed    bool
	Code      string
	HostID    string
	Status    string
	Round     int
	MaxRounds int
	Players   []Player
	Rounds    map[int][]Submission
	CreatedAt time.Time
	DBID      uint
}

func (r *Room) findPlayer(id string) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i], true
		}
	}
	return nil, false
}

func (r *Room) removePlayer(id string) bool {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) hasNickname(nickname string) bool {
	for i := range r.Players {
		if r.Players[i].Nickname == nickname {
			return true
		}
	}
	return false
}

func (r *Room) currentSubmissions() []Submission {
	return r.Rounds[r.Round]
}

func (r *Room) submissionBy(creatorID string) (*Submission, bool) {
	subs := r.Rounds[r.Round]
	for i := range subs {
		if subs[i].CreatorID == creatorID {
			return &subs[i], true
		}
	}
	return nil, false
}

func (s *Submission) hasVoteFrom(voterID string) bool {
	for _, vote := range s.Votes {
		if vote.VoterID == voterID {
			return true
		}
	}
	return false
}

func (s *Submission) roundScore() int {
	total := 0
	for _, vote := range s.Votes {
		total += vote.Stars
	}
	return total
}

// turnsComplete reports whether every current member has a submission in
// the active round. Disconnected players carry no obligation because
// removePlayer already took them out of the membership list.
func turnsComplete(room *Room) bool {
	for i := range room.Players {
		if _, ok := room.submissionBy(room.Players[i].ID); !ok {
			return false
		}
	}
	return true
}

// votingComplete reports whether every connected non-creator has voted on
// every submission of the active round. Trivially true when the round has
// no submissions or no eligible voters remain.
func votingComplete(room *Room) bool {
	subs := room.currentSubmissions()
	for i := range subs {
		for j := range room.Players {
			if room.Players[j].ID == subs[i].CreatorID {
				continue
			}
			if !subs[i].hasVoteFrom(room.Players[j].ID) {
				return false
			}
		}
	}
	return true
}

func generationResolved(room *Room) bool {
	subs := room.currentSubmissions()
	for i := range subs {
		if !subs[i].Resolved {
			return false
		}
	}
	return true
}
