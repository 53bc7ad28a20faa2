package shipments_api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const actorHeader = "X-Actor-ID"

var signingMethod = jwt.SigningMethodHS256

type actorKey struct{}

// ActorFrom returns the caller attributed to the request, if any.
func ActorFrom(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// identity attributes the request to a user. It does not authorize anything:
// anonymous requests pass through without an actor.
func (a *ShipmentsAPI) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			actor uuid.UUID
			err   error
		)
		if a.jwtSecret != "" {
			actor, err = a.bearerSubject(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
		} else if raw := strings.TrimSpace(r.Header.Get(actorHeader)); raw != "" {
			actor, err = uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "malformed "+actorHeader)
				return
			}
		}
		if actor != uuid.Nil {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, actor))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *ShipmentsAPI) bearerSubject(header string) (uuid.UUID, error) {
	if header == "" {
		return uuid.Nil, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return uuid.Nil, errors.New("expected bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(a.jwtSecret), nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "parse token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "token subject")
	}
	return id, nil
}
