package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

const testKeyHex = "5f8d2c3b4a6978e1f0a1b2c3d4e5f60718293a4b5c6d7e8f9091a2b3c4d5e6f7"

func testSigningKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString(testKeyHex)
	if err != nil {
		t.Fatalf("failed to decode test key: %v", err)
	}
	return key
}

func testUserWithPermissions() *model.User {
	return &model.User{
		ID:    42,
		Name:  "Dana",
		Email: "dana@example.com",
		Role: model.Role{
			Name: model.RoleDeveloper,
			Permissions: []model.Permission{
				{Module: model.Module{Name: model.ModuleTask}, CanView: true, CanUpdate: true},
				{Module: model.Module{Name: model.ModuleProject}, CanView: true},
			},
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService(testSigningKey(t), time.Hour, 7*24*time.Hour, 5*time.Minute, nil)

	signed, err := tokens.GenerateAccessToken(testUserWithPermissions())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := tokens.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.ID != 42 {
		t.Errorf("claims.ID = %d, want 42", claims.ID)
	}
	if claims.Email != "dana@example.com" {
		t.Errorf("claims.Email = %q, want dana@example.com", claims.Email)
	}
	if claims.Role != model.RoleDeveloper {
		t.Errorf("claims.Role = %q, want %q", claims.Role, model.RoleDeveloper)
	}
	if len(claims.Permissions) != 2 {
		t.Fatalf("len(claims.Permissions) = %d, want 2", len(claims.Permissions))
	}
	if claims.Permissions[0].Module != model.ModuleTask || !claims.Permissions[0].CanUpdate {
		t.Errorf("unexpected first permission claim: %+v", claims.Permissions[0])
	}
	if claims.Permissions[1].CanUpdate {
		t.Errorf("project permission should not grant update: %+v", claims.Permissions[1])
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	issuer := NewTokenService(testSigningKey(t), time.Hour, time.Hour, time.Minute, nil)
	otherKey := testSigningKey(t)
	otherKey[0] ^= 0xff
	validator := NewTokenService(otherKey, time.Hour, time.Hour, time.Minute, nil)

	signed, err := issuer.GenerateAccessToken(testUserWithPermissions())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = validator.ValidateToken(signed)
	if !apperr.Is(err, apperr.TokenSignatureInvalid) {
		t.Errorf("ValidateToken with wrong key = %v, want TOKEN_SIGNATURE_INVALID", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	tokens := NewTokenService(testSigningKey(t), -time.Minute, time.Hour, time.Minute, nil)

	signed, err := tokens.GenerateAccessToken(testUserWithPermissions())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = tokens.ValidateToken(signed)
	if !apperr.Is(err, apperr.TokenExpired) {
		t.Errorf("ValidateToken on expired token = %v, want TOKEN_EXPIRED", err)
	}
}

func TestValidateTokenMalformed(t *testing.T) {
	tokens := NewTokenService(testSigningKey(t), time.Hour, time.Hour, time.Minute, nil)

	_, err := tokens.ValidateToken("not-a-jwt")
	if !apperr.Is(err, apperr.TokenMalformed) {
		t.Errorf("ValidateToken on garbage = %v, want TOKEN_MALFORMED", err)
	}
}

func TestIntrospectNeverErrors(t *testing.T) {
	tokens := NewTokenService(testSigningKey(t), time.Hour, time.Hour, time.Minute, nil)

	if res := tokens.Introspect("garbage"); res.Valid {
		t.Error("Introspect(garbage).Valid = true, want false")
	}

	signed, err := tokens.GenerateAccessToken(testUserWithPermissions())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if res := tokens.Introspect(signed); !res.Valid {
		t.Error("Introspect(valid).Valid = false, want true")
	}
}

func TestResetTokenCarriesType(t *testing.T) {
	tokens := NewTokenService(testSigningKey(t), time.Hour, time.Hour, 5*time.Minute, nil)

	signed, err := tokens.GenerateResetToken("dana@example.com")
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}

	claims, err := tokens.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Type != ResetTokenType {
		t.Errorf("claims.Type = %q, want %q", claims.Type, ResetTokenType)
	}
	if claims.Email != "dana@example.com" {
		t.Errorf("claims.Email = %q, want dana@example.com", claims.Email)
	}
	if claims.RegisteredClaims.ID == "" {
		t.Error("reset token should carry a jti")
	}
}

// Refresh tokens carry no permissions; a refreshed access token must
// reflect permission changes made after the original login.
func TestRefreshAccessTokenReflectsCurrentPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	mod, err := env.roleRepo.GetOrCreateModule(ctx, model.ModuleTask)
	if err != nil {
		t.Fatalf("GetOrCreateModule failed: %v", err)
	}
	perm := &model.Permission{RoleID: dev.RoleID, ModuleID: mod.ID, CanView: true}
	if err := env.db.Create(perm).Error; err != nil {
		t.Fatalf("failed to create permission: %v", err)
	}

	tokens := NewTokenService(testSigningKey(t), time.Hour, time.Hour, time.Minute, env.userRepo)

	refresh, err := tokens.GenerateRefreshToken(dev)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	// Grant update after the refresh token was issued
	if err := env.db.Model(perm).Update("can_update", true).Error; err != nil {
		t.Fatalf("failed to update permission: %v", err)
	}

	access, err := tokens.RefreshAccessToken(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}

	claims, err := tokens.ValidateToken(access)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if len(claims.Permissions) != 1 {
		t.Fatalf("len(claims.Permissions) = %d, want 1", len(claims.Permissions))
	}
	if !claims.Permissions[0].CanUpdate {
		t.Error("refreshed access token should carry the newly granted update permission")
	}
}

func TestRefreshWithAccessTokenStillResolvesUser(t *testing.T) {
	env := newTestEnv(t)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)

	tokens := NewTokenService(testSigningKey(t), time.Hour, time.Hour, time.Minute, env.userRepo)

	refresh, err := tokens.GenerateRefreshToken(dev)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := tokens.ValidateToken(refresh)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Role != "" || len(claims.Permissions) != 0 {
		t.Errorf("refresh token should carry no role or permissions, got role=%q perms=%d", claims.Role, len(claims.Permissions))
	}
	if claims.Subject != dev.Email {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, dev.Email)
	}
}
