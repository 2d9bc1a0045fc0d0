package domain

import (
	"strconv"
	"time"
)

// User is a storefront account. ID is the Telegram user id.
type User struct {
	ID        int64
	Username  string
	Balance   int64 // minor units
	CreatedAt time.Time
}

// Handle returns the display handle used in replies.
func (u *User) Handle() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return "@" + strconv.FormatInt(u.ID, 10)
}
