package domain

import (
	"regexp"
	"time"
)

// usernamePattern must match the full username: a letter followed by at least
// one letter or digit.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]+$`)

// ValidUsername reports whether s is an acceptable username.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// FollowEdge is one side of a follow relationship, embedded in both the
// follower's follows array and the followed user's followers array. The
// followed_at timestamp is fixed by the first successful Follow call.
type FollowEdge struct {
	ID         string    `json:"id" bson:"id"`
	FollowedAt time.Time `json:"followed_at" bson:"followed_at"`
}

// User is a stored user document. ID is the content hash of Username, which
// is what makes usernames unique without a store-level constraint.
type User struct {
	ID        string       `json:"id" bson:"_id"`
	Username  string       `json:"username" bson:"username"`
	JoinedAt  time.Time    `json:"joined_at" bson:"joined_at"`
	Follows   []FollowEdge `json:"follows" bson:"follows"`
	Followers []FollowEdge `json:"followers" bson:"followers"`
}

// HasFollow reports whether the user's follows array contains id.
func (u *User) HasFollow(id string) bool {
	for _, e := range u.Follows {
		if e.ID == id {
			return true
		}
	}
	return false
}

// HasFollower reports whether the user's followers array contains id.
func (u *User) HasFollower(id string) bool {
	for _, e := range u.Followers {
		if e.ID == id {
			return true
		}
	}
	return false
}
