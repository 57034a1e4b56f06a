package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"inkwell/engagement-service/internal/errs"
)

const (
	ipTokenContext  = "reactor-ip-v1"
	mixTokenContext = "reactor-mix-v1"

	minActorTokenLength = 20
	maxActorTokenLength = 64
	actorTokenLength    = 40
)

// ActorResolution is the outcome of resolving a reactor identity.
// ShouldSetCookie tells the HTTP layer to persist the token client-side.
type ActorResolution struct {
	Token           string
	ShouldSetCookie bool
}

// ActorService derives anonymous reactor tokens. Tokens identify a browser
// for toggle dedup only; they are not authentication and are never trusted
// verbatim from the client without server-side mixing.
type ActorService struct {
	secret string
}

// NewActorService creates an actor identity resolver.
func NewActorService(serverSecret string) *ActorService {
	return &ActorService{secret: serverSecret}
}

// Resolve derives the reactor token for a request. A valid cookie token wins
// and stays stable across IP changes; without one the token is derived from
// IP and user agent, or random when no IP is known.
func (s *ActorService) Resolve(ip, userAgent, cookieToken string) ActorResolution {
	ipToken := s.ipToken(ip, userAgent)

	if IsValidActorToken(cookieToken) {
		if cookieToken == ipToken {
			return ActorResolution{Token: cookieToken}
		}
		return ActorResolution{Token: s.mixToken(cookieToken)}
	}

	if ip == "" {
		return ActorResolution{Token: randomActorToken(), ShouldSetCookie: true}
	}
	return ActorResolution{Token: ipToken, ShouldSetCookie: true}
}

// ValidateToken checks a caller-supplied token, e.g. one echoed back in a
// toggle request body.
func (s *ActorService) ValidateToken(token string) error {
	if !IsValidActorToken(token) {
		return errs.ErrInvalidActorToken
	}
	return nil
}

func (s *ActorService) ipToken(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + s.secret + "|" + ipTokenContext))
	return hex.EncodeToString(sum[:])[:actorTokenLength]
}

// mixToken re-derives a client-presented token with the server secret so a
// forged cookie never maps onto another actor's stored token. The mix is
// independent of IP, keeping identity stable for roaming clients.
func (s *ActorService) mixToken(cookieToken string) string {
	sum := sha256.Sum256([]byte(cookieToken + ":" + s.secret + ":" + mixTokenContext))
	return hex.EncodeToString(sum[:])[:actorTokenLength]
}

func randomActorToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsValidActorToken reports whether token is 20 to 64 lowercase hex chars.
func IsValidActorToken(token string) bool {
	if len(token) < minActorTokenLength || len(token) > maxActorTokenLength {
		return false
	}
	for _, c := range token {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
