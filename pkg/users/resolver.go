package users

import (
	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/models"
)

// UserInfoFetcher is the gateway operation the resolver depends on
type UserInfoFetcher interface {
	GetUserInfo(userID string) (*flickr.Person, flickr.Outcome)
}

// Cache maps user ids to resolved display metadata. It is created at run
// start, populated lazily (exactly once per id), never evicted during a
// run, and snapshotted to users_cache.json at run end.
type Cache struct {
	entries map[string]models.UserInfo
}

// NewCache creates an empty user cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]models.UserInfo)}
}

// Get returns the cached entry for a user id
func (c *Cache) Get(userID string) (models.UserInfo, bool) {
	info, ok := c.entries[userID]
	return info, ok
}

// Put stores an entry; population happens once per id per run
func (c *Cache) Put(userID string, info models.UserInfo) {
	c.entries[userID] = info
}

// Len returns the number of cached users
func (c *Cache) Len() int {
	return len(c.entries)
}

// Snapshot returns a copy of the cache contents for persistence
func (c *Cache) Snapshot() map[string]models.UserInfo {
	out := make(map[string]models.UserInfo, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Resolver resolves user ids to display metadata through the gateway,
// caching every result for the lifetime of the run.
type Resolver struct {
	gateway UserInfoFetcher
	cache   *Cache
	logger  logger.Logger
}

// NewResolver creates a resolver backed by the given cache
func NewResolver(gateway UserInfoFetcher, cache *Cache, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{gateway: gateway, cache: cache, logger: log}
}

// Cache returns the resolver's backing cache
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns display metadata for a user id. A cache miss triggers
// exactly one remote lookup; an unresolvable user yields a synthesized
// fallback keyed on the raw id.
func (r *Resolver) Resolve(userID string) models.UserInfo {
	if info, ok := r.cache.Get(userID); ok {
		return info
	}

	person, outcome := r.gateway.GetUserInfo(userID)

	var info models.UserInfo
	if outcome == flickr.OutcomeOK && person.NSID != "" {
		info = fromPerson(person)
	} else {
		r.logger.DebugWithFields("synthesizing fallback user info", map[string]interface{}{
			"user_id": userID,
			"outcome": outcome.String(),
		})
		info = fallbackUserInfo(userID)
	}

	r.cache.Put(userID, info)
	return info
}

// fromPerson derives the cached entry from a people.getInfo record
func fromPerson(person *flickr.Person) models.UserInfo {
	iconFarm, _ := person.IconFarm.Int64()
	isPro, _ := person.IsPro.Int64()

	realname := person.Realname.Text
	username := person.Username.Text

	displayName := realname
	if displayName == "" {
		displayName = username
	}

	return models.UserInfo{
		DisplayName: displayName,
		Username:    username,
		Realname:    realname,
		AvatarURL:   flickr.BuddyIconURL(iconFarm, person.IconServer, person.NSID),
		IsPro:       int(isPro),
		ProfileURL:  person.ProfileURL.Text,
	}
}

// fallbackUserInfo synthesizes an entry for users the API cannot resolve
func fallbackUserInfo(userID string) models.UserInfo {
	return models.UserInfo{
		DisplayName: userID,
		Username:    userID,
		Realname:    "",
		AvatarURL:   flickr.BuddyIconPlaceholder,
		IsPro:       0,
		ProfileURL:  flickr.FallbackProfileURL(userID),
	}
}
