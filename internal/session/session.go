// Package session implements the signed-cookie session identity. A session is
// an HS256-signed token carried in an HttpOnly cookie; the token subject is
// the user ID.
package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the session cookie.
	CookieName = "inkwell_session"

	issuer   = "inkwell"
	audience = "inkwell-web"

	// sessionTTL bounds a non-remembered session server-side; the cookie
	// itself expires with the browser session.
	sessionTTL = 12 * time.Hour
	// rememberTTL applies when the user checked "remember me".
	rememberTTL = 30 * 24 * time.Hour
)

// Identity is the authenticated identity decoded from a session token.
type Identity struct {
	UserID   uint
	Username string
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret string
}

// NewManager creates a session Manager with the given signing secret.
func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// Issue creates a signed session token for the given user.
func (m *Manager) Issue(userID uint, username string, remember bool) (string, error) {
	if m.secret == "" {
		return "", fmt.Errorf("session secret not configured")
	}

	ttl := sessionTTL
	if remember {
		ttl = rememberTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"username": username,                               // Username (cached in token)
		"iss":      issuer,                                 // Issuer
		"aud":      audience,                               // Audience
		"exp":      now.Add(ttl).Unix(),                    // Expiration
		"iat":      now.Unix(),                             // Issued at
		"nbf":      now.Unix(),                             // Not before
		"jti":      generateJTI(),                          // Unique token ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// Parse validates a session token and returns the identity it carries.
func (m *Manager) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session claims")
	}

	if iss, issOk := claims["iss"].(string); !issOk || iss != issuer {
		return nil, fmt.Errorf("invalid session issuer")
	}
	if aud, audOk := claims["aud"].(string); !audOk || aud != audience {
		return nil, fmt.Errorf("invalid session audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in session token")
	}

	username, _ := claims["username"].(string)

	return &Identity{UserID: uint(userID), Username: username}, nil
}

// Cookie builds the session cookie for the given token. A remembered session
// persists across browser restarts; otherwise the cookie is session-scoped.
func Cookie(token string, remember bool, secure bool) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if remember {
		cookie.Expires = time.Now().Add(rememberTTL)
	}
	return cookie
}

// ExpiredCookie builds a cookie that clears the session unconditionally.
func ExpiredCookie(secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	}
}

// generateJTI creates a unique token ID to prevent replay confusion between sessions.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
