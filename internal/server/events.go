package server

import "encoding/json"

// Client-issued events.
const (
	evtCreateRoom  = "create_room"
	evtJoinRoom    = "join_room"
	evtLeaveRoom   = "leave_room"
	evtToggleReady = "toggle_ready"
	evtStartGame   = "start_game"
	evtSubmitTurn  = "submit_turn"
	evtSubmitVote  = "submit_vote"
	evtNextRound   = "next_round"
)

// Server-emitted events.
const (
	evtRoomCreated     = "room_created"
	evtRoomUpdate      = "room_update"
	evtProcessingStart = "processing_start"
	evtVoteStart       = "vote_start"
	evtRoundResult     = "round_result"
	evtError           = "error"
)

type clientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type serverEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type createRoomRequest struct {
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type joinRoomRequest struct {
	RoomCode  string `json:"room_code"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type submitTurnRequest struct {
	TemplateID     string `json:"template_id"`
	TargetPlayerID string `json:"target_id"`
	Caption        string `json:"caption"`
}

type submitVoteRequest struct {
	TargetCreatorID string `json:"target_creator_id"`
	Stars           int    `json:"stars"`
}

func decodeEvent(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return invalidInputf("missing event payload")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return invalidInputf("malformed event payload")
	}
	return nil
}
