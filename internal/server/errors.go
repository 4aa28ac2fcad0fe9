package server

import (
	"errors"
	"fmt"
)

const (
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindPrecondition = "precondition_failed"
	kindInvalidInput = "invalid_input"
)

// commandError is a rejection of a single client command. It is sent only
// to the originating connection and never touches room state.
type commandError struct {
	kind    string
	message string
}

func (e *commandError) Error() string {
	return e.message
}

var (
	errRoomNotFound        = &commandError{kindNotFound, "room not found"}
	errRoomFull            = &commandError{kindConflict, "room is full"}
	errRoomNotJoinable     = &commandError{kindPrecondition, "game already started"}
	errDuplicateNickname   = &commandError{kindConflict, "nickname already taken"}
	errCodeSpaceExhausted  = &commandError{kindConflict, "no room codes available"}
	errNotInRoom           = &commandError{kindNotFound, "not in a room"}
	errAlreadyInRoom       = &commandError{kindConflict, "already in a room"}
	errNotHost             = &commandError{kindPrecondition, "only the host can do that"}
	errNotAllReady         = &commandError{kindPrecondition, "not all players are ready"}
	errInsufficientPlayers = &commandError{kindPrecondition, "need at least 2 players"}
	errWrongStatus         = &commandError{kindPrecondition, "action not allowed in the current state"}
	errDuplicateSubmission = &commandError{kindConflict, "turn already submitted this round"}
	errUnknownTarget       = &commandError{kindNotFound, "target player is not in the room"}
	errSelfTarget          = &commandError{kindInvalidInput, "cannot target yourself"}
	errUnknownTemplate     = &commandError{kindInvalidInput, "unknown meme template"}
	errUnknownSubmission   = &commandError{kindNotFound, "no such submission this round"}
	errSelfVote            = &commandError{kindInvalidInput, "cannot vote on your own meme"}
	errDuplicateVote       = &commandError{kindConflict, "already voted on that meme"}
	errInvalidStars        = &commandError{kindInvalidInput, "rating must be between 1 and 5"}
	errNoNextRound         = &commandError{kindPrecondition, "no next round to start"}
)

func invalidInputf(format string, args ...any) error {
	return &commandError{kindInvalidInput, fmt.Sprintf(format, args...)}
}

func errorKind(err error) string {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.kind
	}
	return kindInvalidInput
}
