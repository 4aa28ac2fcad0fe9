package server

import (
	"crypto/rand"
	"sort"
)

// newRoomCode returns a short, human-typeable code. The alphabet skips
// ambiguous characters (0/O, 1/I).
func newRoomCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "AAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
