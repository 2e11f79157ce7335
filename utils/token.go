package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/chattu/chattu-backend/models"
)

// SessionCookieName carries the session credential for both the HTTP
// and the websocket admission paths.
const SessionCookieName = "token"

const AdminCookieName = "admintoken"

// adminSessionTTL bounds both the admin token and its cookie.
const adminSessionTTL = 15 * time.Minute

// SignSessionToken issues the session credential for a user.
func SignSessionToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Avatar: user.Avatar.URL,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies the signature and decodes the session claims.
func ValidateToken(secret, tokenStr string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user id claim")
	}
	return claims, nil
}

// SignAdminToken issues the admin cookie value: a short-lived token
// carrying the secret key the dashboard logged in with.
func SignAdminToken(secret, adminKey string) (string, error) {
	claims := jwt.MapClaims{
		"key": adminKey,
		"exp": time.Now().Add(adminSessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAdminToken returns the key claim of a verified admin token.
func ValidateAdminToken(secret, tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	key, _ := claims["key"].(string)
	return key, nil
}

// SessionTokenFromRequest extracts the session cookie. The websocket
// handshake and the HTTP middleware share this parsing so the two
// admission paths cannot diverge.
func SessionTokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// SessionCookie builds the session cookie the way the login and
// register handlers set it.
func SessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// AdminCookie builds the admin cookie with the same attributes as the
// session cookie and a lifetime matching the admin token.
func AdminCookie(token string) *http.Cookie {
	cookie := SessionCookie(token, adminSessionTTL)
	cookie.Name = AdminCookieName
	return cookie
}

// ExpiredCookie returns a cookie that forces the client to drop the
// named cookie.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().AddDate(0, 0, -1),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
