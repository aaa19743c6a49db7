package cache

import (
	"strings"

	"github.com/google/uuid"
)

// Key builders. Everything scoped to one user is reachable from
// DashboardKey, UserKey and the two prefixes below.

func DashboardKey(userID uuid.UUID) string {
	return "dashboard:summary:" + userID.String()
}

// UserKey is keyed by normalized email because lookups happen before the
// id is known.
func UserKey(email string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(email))
}

func UserDataPrefix(userID uuid.UUID) string {
	return "user_data:" + userID.String() + ":"
}

func UserDeadlinesPrefix(userID uuid.UUID) string {
	return "user_deadlines:" + userID.String() + ":"
}

// DeadlineListKey caches the owner's full deadline list.
func DeadlineListKey(userID uuid.UUID) string {
	return UserDeadlinesPrefix(userID) + "all"
}
