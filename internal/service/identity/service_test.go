package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndParse(t *testing.T) {
	s := NewService("test-secret")

	resp, err := s.Login("  alice  ")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Participant.DisplayName)
	assert.NotEmpty(t, resp.Participant.Id)
	assert.NotEmpty(t, resp.Token)

	participant, err := s.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Participant, participant)
}

func TestLoginRejectsBadNames(t *testing.T) {
	s := NewService("test-secret")

	_, err := s.Login("   ")
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = s.Login(strings.Repeat("x", 33))
	assert.ErrorIs(t, err, ErrInvalidDisplayName)
}

func TestLoginCountsRunesNotBytes(t *testing.T) {
	s := NewService("test-secret")

	// 32 two-byte runes fit the limit even though they exceed 32 bytes
	resp, err := s.Login(strings.Repeat("é", 32))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 32), resp.Participant.DisplayName)

	_, err = s.Login(strings.Repeat("é", 33))
	assert.ErrorIs(t, err, ErrInvalidDisplayName)
}

func TestParseRejectsForeignToken(t *testing.T) {
	s := NewService("test-secret")
	other := NewService("other-secret")

	resp, err := other.Login("bob")
	require.NoError(t, err)

	_, err = s.Parse(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
