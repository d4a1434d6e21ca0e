package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"caio1", true},
		{"caioueno", true},
		{"aB9", true},
		{"1caio", false},
		{"caio!", false},
		{"c", false},
		{"", false},
		{"caio ueno", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidUsername(tt.username), "username %q", tt.username)
	}
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"first tweet example #api", []string{"api"}},
		{"#one two #three", []string{"one", "three"}},
		{"#api2 trailing digits stop the match", []string{"api"}},
		{"no tags here", []string{}},
		{"##double", []string{"double"}},
		{"#", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractHashtags(tt.text), "text %q", tt.text)
	}
}

func TestPostMarshalJSON_Variants(t *testing.T) {
	original := Post{Kind: KindOriginal, Original: &Original{
		ID:       "abc",
		AuthorID: "def",
		Text:     "hello #world",
		Hashtags: []string{"world"},
		Retweets: []RetweetEdge{},
		Likes:    []LikeEdge{},
	}}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))
	assert.Equal(t, "abc", asMap["id"])
	assert.Contains(t, asMap, "retweets")
	assert.Contains(t, asMap, "likes")
	assert.NotContains(t, asMap, "tweet_id")

	repost := Post{Kind: KindRepost, Repost: &Repost{ID: "ghi", UserID: "def", TweetID: "abc"}}
	raw, err = json.Marshal(repost)
	require.NoError(t, err)

	asMap = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &asMap))
	assert.Equal(t, "abc", asMap["tweet_id"])
	assert.NotContains(t, asMap, "retweets")
}

func TestUserMembershipHelpers(t *testing.T) {
	u := User{
		Follows:   []FollowEdge{{ID: "a"}},
		Followers: []FollowEdge{{ID: "b"}},
	}
	assert.True(t, u.HasFollow("a"))
	assert.False(t, u.HasFollow("b"))
	assert.True(t, u.HasFollower("b"))
	assert.False(t, u.HasFollower("a"))
}
