package misc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLimit(t *testing.T) {
	assert.Equal(t, "", StringLimit("abcdef", -1))
	assert.Equal(t, "ab", StringLimit("abcdef", 2))
	assert.Equal(t, "abc", StringLimit("abcdef", 3))
	assert.Equal(t, "a...", StringLimit("abcdef", 4))
	assert.Equal(t, "abcdef", StringLimit("abcdef", 6))
	assert.Equal(t, "ab", StringLimit("ab", 10))
}

func TestBytesLimit(t *testing.T) {
	assert.Nil(t, BytesLimit([]byte("abcdef"), -1))
	assert.Equal(t, []byte("ab"), BytesLimit([]byte("abcdef"), 2))
	assert.Equal(t, []byte("a..."), BytesLimit([]byte("abcdef"), 4))
	assert.Equal(t, []byte("abcdef"), BytesLimit([]byte("abcdef"), 10))
}

func TestSteamRegexes(t *testing.T) {
	assert.True(t, SteamAppIDRegex.MatchString("400"))
	assert.True(t, SteamAppIDRegex.MatchString("1091500"))
	assert.False(t, SteamAppIDRegex.MatchString("400a"))
	assert.False(t, SteamAppIDRegex.MatchString("12345678901"))

	m := SteamURLRegex.FindStringSubmatch("https://store.steampowered.com/app/400/Portal/")
	assert.NotNil(t, m)
	assert.Equal(t, "400", m[1])
	assert.Nil(t, SteamURLRegex.FindStringSubmatch("https://store.epicgames.com/p/hades"))
}
