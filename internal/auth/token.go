package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens verifies bearer tokens issued by the identity provider. Issue is
// only used by operator tooling and tests.
type Tokens struct {
	secret      []byte
	adminEmails map[string]struct{}
}

func NewTokens(secret string, adminEmails []string) *Tokens {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allow[strings.ToLower(e)] = struct{}{}
	}
	return &Tokens{secret: []byte(secret), adminEmails: allow}
}

// Issue signs a token for the given actor.
func (t *Tokens) Issue(a Actor, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": a.UserID,
		"role":    string(a.Role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if a.Email != "" {
		claims["email"] = a.Email
	}
	if a.VendorID != "" {
		claims["vendor_id"] = a.VendorID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenStr and returns the actor it represents.
func (t *Tokens) Parse(tokenStr string) (Actor, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, fmt.Errorf("invalid or expired token: %w", err)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Actor{}, errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	vendorID, _ := claims["vendor_id"].(string)

	a := Actor{UserID: userID, Email: email, Role: Role(role), VendorID: vendorID}
	if a.Role == "" {
		a.Role = RoleUser
	}
	if _, ok := t.adminEmails[strings.ToLower(email)]; ok && email != "" {
		a.Role = RoleAdmin
	}
	return a, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
