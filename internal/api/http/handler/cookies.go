package handler

import (
	"net/http"

	"github.com/dtroode/auth-service/internal/api/http/middleware"
	"github.com/dtroode/auth-service/internal/model"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) setTokens(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, pair.AccessToken, int(model.AccessTokenTTL.Seconds())))
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(model.RefreshTokenTTL.Seconds())))
}

func (c CookieConfig) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, "", -1))
}
