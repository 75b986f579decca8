//Package auth gates requests behind HTTP Basic authentication and exposes
//the authenticated username to the rest of the request pipeline.
package auth

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

//contextKey is an unexported type for context keys so that no other package
//can read or shadow the authenticated username.
type contextKey string

const usernameKey contextKey = "authenticatedUsername"

//Verifier checks a username/password pair against stored credentials
type Verifier interface {
	AuthenticateUser(username, password string) bool
}

//Basic wraps h with HTTP Basic authentication against the given verifier.
//On success the authenticated username is bound to the request context for
//the lifetime of that request only; on failure the request is rejected
//before any handler logic runs.
func Basic(verifier Verifier, realm string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		username, password, ok := request.BasicAuth()
		if !ok || !verifier.AuthenticateUser(username, password) {
			log.WithField("username", username).Info("rejecting request with missing or invalid credentials")
			writer.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
			writer.Header().Add("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(writer, `{"message": "authentication required"}`)
			return
		}

		ctx := context.WithValue(request.Context(), usernameKey, username)
		h.ServeHTTP(writer, request.WithContext(ctx))
	})
}

//Username returns the authenticated username bound to ctx by Basic, or the
//empty string when the request never passed authentication.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
