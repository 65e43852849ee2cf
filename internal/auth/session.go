// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the browser token.
const CookieName = "highcard_token"

// privateKey and publicKey are used for signing and verifying session tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long a token stays valid (0 => never expires).
	tokenTTL time.Duration
)

// parseTokenExpireTime reads TOKEN_EXPIRE_TIME and sets tokenTTL accordingly.
func parseTokenExpireTime() error {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "never" || duration == "0" || duration == "" {
		tokenTTL = 0
		return nil
	}
	d, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("failed to parse token expire time: %w", err)
	}
	tokenTTL = d
	return nil
}

// Init sets up the signing keys. With an empty secret a fresh key pair is
// generated, so tokens do not survive a restart; otherwise the keys are
// derived from secret.
func Init(secret string) error {
	var err error
	if secret == "" {
		publicKey, privateKey, err = ed25519.GenerateKey(nil)
		if err != nil {
			return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
		}
	} else {
		publicKey, privateKey, err = deriveKeyPair(secret)
		if err != nil {
			return err
		}
	}
	return parseTokenExpireTime()
}

// CreateToken creates a signed token with "sub" = browserID.
func CreateToken(browserID uuid.UUID) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("auth not initialized")
	}
	claims := jwt.MapClaims{
		"sub": browserID.String(),
		"iat": time.Now().Unix(),
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateToken verifies a token and returns the browser ID it carries.
func AuthenticateToken(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing sub in jwt")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid sub in jwt: %w", err)
	}
	return id, nil
}

// EnsureBrowserID returns the browser ID from the request cookie. When the
// cookie is missing or invalid a new ID is minted and the cookie is set on w.
func EnsureBrowserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := AuthenticateToken(c.Value); err == nil {
			return id, nil
		}
	}

	id := uuid.New()
	token, err := CreateToken(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create browser token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
