package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenph/bookhaven-backend/pkg/config"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
)

func jwtTestConfig(ttlMinutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "bookhaven",
		ExpirationMinutes: ttlMinutes,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := jwtTestConfig(30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
	assert.Equal(t, cfg.Issuer, claims.Issuer)

	wantExp := now.Add(30 * time.Minute)
	assert.WithinDuration(t, wantExp, claims.ExpiresAt.Time, time.Second)
}

func TestParseAccessToken_invalidSignature(t *testing.T) {
	cfg := jwtTestConfig(10)

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token+"x")
	assert.Error(t, err)
}

func TestParseAccessToken_expired(t *testing.T) {
	cfg := jwtTestConfig(15)

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestParseAccessToken_wrongIssuer(t *testing.T) {
	mintCfg := jwtTestConfig(10)
	token, err := MintAccessToken(mintCfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	parseCfg := mintCfg
	parseCfg.Issuer = "someone-else"
	_, err = ParseAccessToken(parseCfg, token)
	assert.Error(t, err)
}

func TestMintAccessToken_invalidRole(t *testing.T) {
	_, err := MintAccessToken(jwtTestConfig(5), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   "",
	})
	assert.Error(t, err)
}
