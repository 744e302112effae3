package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Supplier is the single accessor for session state. Everything else in the
// client goes through it; nothing reads the stores directly.
//
// Two stores exist because the platform keeps the token both durably and
// per-process, and either can be missing after certain navigation paths.
// Token reads self-heal the durable store from the ephemeral one.
type Supplier struct {
	mu        sync.Mutex
	durable   Store
	ephemeral Store
}

// NewSupplier creates a supplier over the two stores.
func NewSupplier(durable, ephemeral Store) *Supplier {
	return &Supplier{durable: durable, ephemeral: ephemeral}
}

// Token returns the current session token, or "" when logged out. A token
// found only in the ephemeral store is written back to the durable one.
func (s *Supplier) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.durable.Get(KeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("durable token read failed")
	}
	if token != "" {
		return token
	}

	token, err = s.ephemeral.Get(KeyToken)
	if err != nil || token == "" {
		return ""
	}

	// Self-heal: the durable copy was dropped, restore it.
	if err := s.durable.Set(KeyToken, token); err != nil {
		log.Warn().Err(err).Msg("durable token heal failed")
	}
	return token
}

// SetToken records a new session token in both stores and caches the user ID
// decoded from its claims.
func (s *Supplier) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.durable.Set(KeyToken, token); err != nil {
		return err
	}
	if err := s.ephemeral.Set(KeyToken, token); err != nil {
		return err
	}
	if id := subjectFromToken(token); id != "" {
		if err := s.durable.Set(KeyUserID, id); err != nil {
			log.Warn().Err(err).Msg("user id cache write failed")
		}
	}
	return nil
}

// Authenticated implements the apiclient token source hook: after any
// authenticated success, make sure both stores carry the token that worked.
func (s *Supplier) Authenticated(token string) {
	s.EnsureMirrored(token)
}

// EnsureMirrored writes token into whichever store disagrees with it.
func (s *Supplier) EnsureMirrored(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, store := range []Store{s.durable, s.ephemeral} {
		current, err := store.Get(KeyToken)
		if err != nil || current == token {
			continue
		}
		if err := store.Set(KeyToken, token); err != nil {
			log.Warn().Err(err).Msg("token mirror write failed")
		}
	}
}

// Clear wipes the session from both stores.
func (s *Supplier) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, store := range []Store{s.durable, s.ephemeral} {
		if err := store.Delete(KeyToken); err != nil {
			log.Warn().Err(err).Msg("token delete failed")
		}
	}
	if err := s.durable.Delete(KeyUserID); err != nil {
		log.Warn().Err(err).Msg("user id delete failed")
	}
}

// UserID returns the current user's ID, decoding it from the token claims
// when the durable store has no cached copy.
func (s *Supplier) UserID() string {
	s.mu.Lock()
	id, err := s.durable.Get(KeyUserID)
	s.mu.Unlock()
	if err == nil && id != "" {
		return id
	}

	token := s.Token()
	if token == "" {
		return ""
	}
	id = subjectFromToken(token)
	if id != "" {
		s.mu.Lock()
		if err := s.durable.Set(KeyUserID, id); err != nil {
			log.Warn().Err(err).Msg("user id cache write failed")
		}
		s.mu.Unlock()
	}
	return id
}

// ExpiresSoon reports whether the token expires within the given window.
// Tokens without an exp claim never report true.
func (s *Supplier) ExpiresSoon(window time.Duration) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	claims := claimsFromToken(token)
	if claims == nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < window
}

// subjectFromToken extracts the user ID claim. The platform has issued tokens
// with the ID under "id", "userId" and the registered subject at different
// times, so all three are accepted.
func subjectFromToken(token string) string {
	claims := claimsFromToken(token)
	if claims == nil {
		return ""
	}
	for _, key := range []string{"id", "userId", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// claimsFromToken decodes claims without verifying the signature. The client
// holds no signing secret; the server is the only party that verifies.
func claimsFromToken(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
