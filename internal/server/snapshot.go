package server

import "sort"

// buildSnapshot renders the room state broadcast after every transition.
// Submissions expose their received-vote count only, never the voter list
// or individual ratings. Callers must hold the room lock.
func buildSnapshot(room *Room) map[string]any {
	players := make([]map[string]any, 0, len(room.Players))
	for i := range room.Players {
		player := &room.Players[i]
		players = append(players, map[string]any{
			"id":         player.ID,
			"nickname":   player.Nickname,
			"avatar_url": player.AvatarURL,
			"ready":      player.Ready,
			"score":      player.Score,
		})
	}

	submissions := make([]map[string]any, 0)
	subs := room.currentSubmissions()
	for i := range subs {
		sub := &subs[i]
		submissions = append(submissions, map[string]any{
			"creator_id":  sub.CreatorID,
			"target_id":   sub.TargetID,
			"template_id": sub.TemplateID,
			"caption":     sub.Caption,
			"image_url":   sub.ImageURL,
			"failed":      sub.Failed,
			"vote_count":  len(sub.Votes),
		})
	}

	return map[string]any{
		"room_code":     room.Code,
		"status":        room.Status,
		"host_id":       room.HostID,
		"current_round": room.Round,
		"max_rounds":    room.MaxRounds,
		"players":       players,
		"submissions":   submissions,
		"ranking":       rankingIDs(room),
	}
}

// rankingIDs orders player ids by cumulative score descending; ties keep
// join order because Players is join-ordered and the sort is stable.
func rankingIDs(room *Room) []string {
	ranked := make([]Player, len(room.Players))
	copy(ranked, room.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	ids := make([]string, 0, len(ranked))
	for i := range ranked {
		ids = append(ids, ranked[i].ID)
	}
	return ids
}
