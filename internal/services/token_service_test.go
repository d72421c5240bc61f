package services

import (
	"crypto/rsa"
	"testing"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type TokenServiceTestSuite struct {
	suite.Suite
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	service    TokenServiceInterface
	user       *models.User
}

func (s *TokenServiceTestSuite) SetupTest() {
	var err error
	s.privateKey, s.publicKey, err = config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.service = s.newService("walletwhiz-test", s.privateKey, s.publicKey)
	s.user = &models.User{ID: uuid.New(), Username: "asha", Email: "asha@example.com"}
}

func (s *TokenServiceTestSuite) newService(issuer string, priv *rsa.PrivateKey, pub *rsa.PublicKey) TokenServiceInterface {
	return NewTokenService(&config.JWTConfig{
		PrivateKey:           priv,
		PublicKey:            pub,
		Issuer:               issuer,
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	})
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (s *TokenServiceTestSuite) TestGenerateAccessToken() {
	token, expiresAt, err := s.service.GenerateAccessToken(s.user)
	s.NoError(err)
	s.NotEmpty(token)
	s.True(expiresAt.After(time.Now()))
	s.True(expiresAt.Before(time.Now().Add(16 * time.Minute)))
}

func (s *TokenServiceTestSuite) TestGenerateAccessToken_NilUser() {
	_, _, err := s.service.GenerateAccessToken(nil)
	s.Error(err)
}

func (s *TokenServiceTestSuite) TestGenerateRefreshToken() {
	token, expiresAt, err := s.service.GenerateRefreshToken(s.user.ID)
	s.NoError(err)
	s.NotEmpty(token)
	s.True(expiresAt.After(time.Now().Add(6 * 24 * time.Hour)))

	_, _, err = s.service.GenerateRefreshToken(uuid.Nil)
	s.Error(err)
}

func (s *TokenServiceTestSuite) TestValidateAccessToken_Success() {
	token, _, err := s.service.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.ValidateAccessToken(token)
	s.NoError(err)
	s.Equal(s.user.ID.String(), claims.UserID)
	s.Equal("asha", claims.Username)
	s.Equal("asha", claims.Subject)
	s.Equal(TokenTypeAccess, claims.TokenType)
	s.Equal("walletwhiz-test", claims.Issuer)
}

func (s *TokenServiceTestSuite) TestValidateAccessToken_Rejects() {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrEmptyToken},
		{"garbage", "invalid.token.format", ErrInvalidToken},
		{"bad signature", "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature", ErrInvalidToken},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			claims, err := s.service.ValidateAccessToken(tt.token)
			s.ErrorIs(err, tt.wantErr)
			s.Nil(claims)
		})
	}
}

func (s *TokenServiceTestSuite) TestValidateRefreshToken_Success() {
	token, _, err := s.service.GenerateRefreshToken(s.user.ID)
	s.Require().NoError(err)

	claims, err := s.service.ValidateRefreshToken(token)
	s.NoError(err)
	s.Equal(s.user.ID.String(), claims.UserID)
	s.Equal(TokenTypeRefresh, claims.TokenType)
}

func (s *TokenServiceTestSuite) TestTokenTypesAreNotInterchangeable() {
	access, _, err := s.service.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	refresh, _, err := s.service.GenerateRefreshToken(s.user.ID)
	s.Require().NoError(err)

	_, err = s.service.ValidateRefreshToken(access)
	s.ErrorIs(err, ErrInvalidTokenType)
	_, err = s.service.ValidateAccessToken(refresh)
	s.ErrorIs(err, ErrInvalidTokenType)
}

func (s *TokenServiceTestSuite) TestExpiredToken() {
	ts := s.service.(*TokenService)
	ts.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := ts.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	claims, err := ts.ValidateAccessToken(token)
	s.ErrorIs(err, ErrExpiredToken)
	s.Nil(claims)
}

func (s *TokenServiceTestSuite) TestWrongIssuer() {
	other := s.newService("someone-else", s.privateKey, s.publicKey)

	token, _, err := other.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidIssuer)
	s.Nil(claims)
}

func (s *TokenServiceTestSuite) TestDifferentKeys() {
	priv2, pub2, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)
	other := s.newService("walletwhiz-test", priv2, pub2)

	token, _, err := other.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	_, err = s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestExtractTokenFromHeader() {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def", "abc.def", false},
		{"lowercase", "bearer abc.def", "abc.def", false},
		{"no prefix", "abc.def", "", true},
		{"empty", "", "", true},
		{"prefix only", "Bearer", "", true},
		{"prefix and space", "Bearer ", "", true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.service.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				s.ErrorIs(err, ErrInvalidAuthHeader)
				return
			}
			s.NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

func (s *TokenServiceTestSuite) TestGetJTIAndExpiry() {
	token, expiresAt, err := s.service.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	jti, err := s.service.GetJTI(token)
	s.NoError(err)
	_, err = uuid.Parse(jti)
	s.NoError(err)

	exp, err := s.service.GetTokenExpiry(token)
	s.NoError(err)
	s.WithinDuration(expiresAt, exp, time.Second)

	_, err = s.service.GetJTI("")
	s.ErrorIs(err, ErrEmptyToken)
}

func BenchmarkTokenService_ValidateAccessToken(b *testing.B) {
	priv, pub, err := config.GenerateRSAKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	ts := NewTokenService(&config.JWTConfig{
		PrivateKey:           priv,
		PublicKey:            pub,
		Issuer:               "bench",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: time.Hour,
	})

	token, _, err := ts.GenerateAccessToken(&models.User{ID: uuid.New(), Username: "bench"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ts.ValidateAccessToken(token); err != nil {
			b.Fatal(err)
		}
	}
}
