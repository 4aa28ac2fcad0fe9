package server

import "testing"

func TestSnapshotHidesIndividualVotes(t *testing.T) {
	room := &Room{
		Code:      "ABCD",
		HostID:    "a",
		Status:    statusVoting,
		Round:     1,
		MaxRounds: 4,
		Players: []Player{
			{ID: "a", Nickname: "Ada"},
			{ID: "b", Nickname: "Bob"},
		},
		Rounds: map[int][]Submission{
			1: {
				{
					CreatorID:  "a",
					TargetID:   "b",
					TemplateID: "drake",
					Caption:    "c",
					Votes:      []Vote{{VoterID: "b", Stars: 5}},
				},
			},
		},
	}

	snap := buildSnapshot(room)
	subs, ok := snap["submissions"].([]map[string]any)
	if !ok || len(subs) != 1 {
		t.Fatalf("expected one submission, got %#v", snap["submissions"])
	}
	sub := subs[0]
	if sub["vote_count"] != 1 {
		t.Fatalf("expected vote_count 1, got %v", sub["vote_count"])
	}
	for _, forbidden := range []string{"votes", "voters", "stars"} {
		if _, leak := sub[forbidden]; leak {
			t.Fatalf("snapshot leaks %q", forbidden)
		}
	}
}

func TestSnapshotShowsOnlyCurrentRound(t *testing.T) {
	room := &Room{
		Code:      "ABCD",
		Status:    statusCollecting,
		Round:     2,
		MaxRounds: 4,
		Players:   []Player{{ID: "a"}, {ID: "b"}},
		Rounds: map[int][]Submission{
			1: {{CreatorID: "a"}, {CreatorID: "b"}},
			2: {{CreatorID: "a"}},
		},
	}
	snap := buildSnapshot(room)
	subs := snap["submissions"].([]map[string]any)
	if len(subs) != 1 {
		t.Fatalf("expected only the active round's submissions, got %d", len(subs))
	}
	if snap["current_round"] != 2 {
		t.Fatalf("expected current_round 2, got %v", snap["current_round"])
	}
}

func TestRankingOrdersByScoreWithStableTies(t *testing.T) {
	room := &Room{
		Players: []Player{
			{ID: "a", Score: 3},
			{ID: "b", Score: 7},
			{ID: "c", Score: 3},
			{ID: "d", Score: 9},
		},
	}
	ranking := rankingIDs(room)
	want := []string{"d", "b", "a", "c"}
	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(ranking))
	}
	for i := range want {
		if ranking[i] != want[i] {
			t.Fatalf("expected ranking %v, got %v", want, ranking)
		}
	}
}

func TestSnapshotEmptySubmissionsIsList(t *testing.T) {
	room := &Room{
		Status:  statusLobby,
		Players: []Player{{ID: "a"}},
		Rounds:  map[int][]Submission{},
	}
	snap := buildSnapshot(room)
	subs, ok := snap["submissions"].([]map[string]any)
	if !ok {
		t.Fatalf("expected submissions list, got %#v", snap["submissions"])
	}
	if len(subs) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(subs))
	}
}
