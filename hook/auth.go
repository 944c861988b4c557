package hook

import (
	"context"
	"fmt"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"github.com/skillsenselab/rpckit/proxy"
)

// TokenSource yields a bearer token for outgoing calls.
type TokenSource func() (string, error)

// AuthHook attaches a bearer token to the outgoing metadata of every call.
type AuthHook struct {
	source TokenSource
}

// BearerAuth creates a hook that fetches a token from source before each
// invocation and sets it as the authorization metadata entry.
func BearerAuth(source TokenSource) *AuthHook {
	return &AuthHook{source: source}
}

// BeforeInvoke attaches the token. A token source failure leaves the
// context untouched so the server can reject the call with a proper
// authentication error.
func (h *AuthHook) BeforeInvoke(ctx context.Context, call *proxy.Call) context.Context {
	token, err := h.source()
	if err != nil || token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

// AfterInvoke is a no-op.
func (h *AuthHook) AfterInvoke(ctx context.Context, call *proxy.Call, err error) {}

// StaticToken returns a TokenSource that always yields the given token.
func StaticToken(token string) TokenSource {
	return func() (string, error) { return token, nil }
}

// JWTTokenSource returns a TokenSource that signs short-lived HS256
// tokens with the given secret. Tokens are cached and reissued shortly
// before they expire.
func JWTTokenSource(secret []byte, issuer, subject string, ttl time.Duration) TokenSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	var mu sync.Mutex
	var cached string
	var expires time.Time

	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()

		// Reissue when within 10% of the TTL from expiry.
		if cached != "" && time.Until(expires) > ttl/10 {
			return cached, nil
		}

		now := time.Now()
		claims := gojwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		}
		token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		if err != nil {
			return "", fmt.Errorf("signing bearer token: %w", err)
		}

		cached = signed
		expires = now.Add(ttl)
		return signed, nil
	}
}
