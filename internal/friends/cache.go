package friends

import (
	"github.com/rs/zerolog/log"

	"github.com/skillshikhi/skillshikhi-go/internal/session"
)

const cacheKeyPrefix = "friendship_"

// Cache holds per-user friendship flags in the durable store. The flags are
// advisory only: a hint for rendering before the first snapshot lands, never
// an input to action guards, and rewritten on every authoritative snapshot.
type Cache struct {
	store session.Store
}

// NewCache creates an advisory cache over the durable store.
func NewCache(store session.Store) *Cache {
	return &Cache{store: store}
}

// IsFriend returns the cached flag and whether a flag exists at all.
func (c *Cache) IsFriend(userID string) (bool, bool) {
	if c == nil || c.store == nil {
		return false, false
	}
	v, err := c.store.Get(cacheKeyPrefix + normalizeID(userID))
	if err != nil || v == "" {
		return false, false
	}
	return v == "true", true
}

// SetFriend records the flag for userID.
func (c *Cache) SetFriend(userID string, isFriend bool) {
	if c == nil || c.store == nil {
		return
	}
	v := "false"
	if isFriend {
		v = "true"
	}
	if err := c.store.Set(cacheKeyPrefix+normalizeID(userID), v); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("friendship cache write failed")
	}
}

// Invalidate drops the flag for userID.
func (c *Cache) Invalidate(userID string) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Delete(cacheKeyPrefix + normalizeID(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("friendship cache delete failed")
	}
}
