package server

import (
	"strings"
)

const (
	maxNicknameLength  = 10
	maxCaptionLength   = 100
	maxAvatarURLLength = 512
	minStars           = 1
	maxStars           = 5
)

func validateNickname(nickname string) (string, error) {
	trimmed := normalizeText(nickname)
	if trimmed == "" {
		return "", invalidInputf("nickname is required")
	}
	if len(trimmed) > maxNicknameLength {
		return "", invalidInputf("nickname must be %d characters or fewer", maxNicknameLength)
	}
	return trimmed, nil
}

func validateCaption(caption string) (string, error) {
	trimmed := normalizeText(caption)
	if trimmed == "" {
		return "", invalidInputf("caption is required")
	}
	if len(trimmed) > maxCaptionLength {
		return "", invalidInputf("caption must be %d characters or fewer", maxCaptionLength)
	}
	return trimmed, nil
}

// validateAvatarURL keeps the reference opaque; only an obvious junk value
// is rejected.
func validateAvatarURL(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if len(trimmed) > maxAvatarURLLength {
		return "", invalidInputf("avatar reference must be %d characters or fewer", maxAvatarURLLength)
	}
	return trimmed, nil
}

func validateStars(stars int) error {
	if stars < minStars || stars > maxStars {
		return errInvalidStars
	}
	return nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
