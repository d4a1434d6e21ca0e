package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrInvalidUsername = errors.New("invalid username")
	ErrSelfRelation    = errors.New("self-relationship forbidden")
	ErrSelfRetweet     = errors.New("author cannot repost own post")
	ErrRepostTarget    = errors.New("operation not allowed on a repost")
	ErrEmptyText       = errors.New("text must not be empty")
)
