package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MepCity/payment-dashboard/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", 60)
	merchant := &models.Merchant{MerchantID: "m-1", Email: "test@merchant.com"}

	token, err := m.Issue(merchant)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "m-1", claims.MerchantID)
	assert.Equal(t, "test@merchant.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	m := NewManager("test-secret", 60)

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret.
	other := NewManager("other-secret", 60)
	token, err := other.Issue(&models.Merchant{MerchantID: "m-1"})
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
}

func TestNewAPIKey(t *testing.T) {
	k1, k2 := NewAPIKey(), NewAPIKey()
	assert.True(t, len(k1) > 3 && k1[:3] == "pk_")
	assert.NotEqual(t, k1, k2)
}
