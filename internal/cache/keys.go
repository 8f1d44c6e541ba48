package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func SessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func ActiveTeamKey(userID uuid.UUID) string {
	return fmt.Sprintf("activeteam:%s", userID)
}

func RateLimitKey(userID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:%s", userID)
}
