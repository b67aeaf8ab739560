package manifest

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"dqx0.com/go/web/browzer"
)

// HashPassword returns a bcrypt hash suitable for BasicAuth.PasswordHash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// requireBasicAuth answers 401 unless the request carries matching
// credentials.
func requireBasicAuth(auth BasicAuth, next browzer.Handler) browzer.HandlerFunc {
	realm := auth.Realm
	if realm == "" {
		realm = "browzer"
	}
	return func(c *browzer.Context) *browzer.Response {
		user, pass, ok := basicCredentials(c.Request.Header)
		if ok &&
			subtle.ConstantTimeCompare([]byte(user), []byte(auth.User)) == 1 &&
			bcrypt.CompareHashAndPassword([]byte(auth.PasswordHash), []byte(pass)) == nil {
			return next.Handle(c)
		}
		c.SetHeader("WWW-Authenticate", `Basic realm="`+realm+`"`)
		return c.SendString(browzer.StatusUnauthorized, browzer.StatusText(browzer.StatusUnauthorized))
	}
}

// basicCredentials decodes an "Authorization: Basic ..." header.
func basicCredentials(h browzer.Header) (user, pass string, ok bool) {
	value, _ := h.Fold("Authorization")
	scheme, encoded, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}
