package config

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTConfig struct {
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	PrivateKey           *rsa.PrivateKey
	PublicKey            *rsa.PublicKey
	Issuer               string
}

const rsaKeyBits = 2048

// loadJWTKeys reads JWT_PRIVATE_KEY / JWT_PUBLIC_KEY (base64 PEM). Without
// them production refuses to start and other environments sign with a
// throwaway keypair, so tokens do not survive a restart.
func (c *Config) loadJWTKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateB64, publicB64 := os.Getenv("JWT_PRIVATE_KEY"), os.Getenv("JWT_PUBLIC_KEY")

	switch {
	case privateB64 != "" && publicB64 != "":
		private, err := decodePEM("JWT_PRIVATE_KEY", privateB64, jwt.ParseRSAPrivateKeyFromPEM)
		if err != nil {
			return nil, nil, err
		}
		public, err := decodePEM("JWT_PUBLIC_KEY", publicB64, jwt.ParseRSAPublicKeyFromPEM)
		if err != nil {
			return nil, nil, err
		}
		return private, public, nil
	case c.IsProduction():
		return nil, nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set in production")
	default:
		slog.Info("generating ephemeral RSA keypair for JWT signing")
		return GenerateRSAKeyPair()
	}
}

// decodePEM base64-decodes the named variable and hands the PEM to parse.
// PKCS1 and PKCS8 private keys and PKIX public keys are accepted.
func decodePEM[K any](name, value string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	key, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return key, nil
}

func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return key, &key.PublicKey, nil
}
