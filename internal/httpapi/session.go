package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"

	"spelling-bee/internal/quiz"
)

const sessionCookieName = "spellbee_session"

// sessionCodec signs session ids into an HS256 token carried by a cookie.
type sessionCodec struct {
	secret []byte
}

func (c sessionCodec) encode(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
	})
	return token.SignedString(c.secret)
}

func (c sessionCodec) decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("session token has no sid")
	}
	return sid, nil
}

// readSession returns the caller's stored session, or an empty one that is
// neither stored nor sent back as a cookie. Read-only routes use it.
func (a *API) readSession(r *http.Request) *quiz.Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sid, err := a.cookies.decode(cookie.Value); err == nil {
			if sess, ok := a.sessions.Lookup(sid); ok {
				return sess
			}
		}
	}
	return quiz.NewSession("")
}

// session returns the caller's quiz session, issuing a new cookie when the
// request carries none or an invalid one.
func (a *API) session(w http.ResponseWriter, r *http.Request) (*quiz.Session, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sid, err := a.cookies.decode(cookie.Value); err == nil {
			return a.sessions.Get(sid), nil
		}
	}

	sid := a.sessions.NewID()
	token, err := a.cookies.encode(sid)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return a.sessions.Get(sid), nil
}
