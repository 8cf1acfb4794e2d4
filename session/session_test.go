package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dinesync/tablemap/utils"
)

func TestFromTokenRoundTrip(t *testing.T) {
	token, err := utils.GenerateToken(9, 7, "staff")
	assert.NoError(t, err)

	sess, err := FromToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(9), sess.UserID)
	assert.Equal(t, uint(7), sess.CompanyID)
	assert.Equal(t, "staff", sess.Role)
	assert.False(t, sess.Expired(time.Now()))
}

func TestFromTokenRejectsGarbage(t *testing.T) {
	_, err := FromToken("")
	assert.Error(t, err)

	_, err = FromToken("not-a-jwt")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, s.Expired(time.Now()))

	s = &Session{}
	assert.False(t, s.Expired(time.Now()))
}
