package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
)

// fakeFetcher returns canned people.getInfo results and counts lookups
type fakeFetcher struct {
	people map[string]*flickr.Person
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		people: make(map[string]*flickr.Person),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) GetUserInfo(userID string) (*flickr.Person, flickr.Outcome) {
	f.calls[userID]++
	if person, ok := f.people[userID]; ok {
		return person, flickr.OutcomeOK
	}
	return nil, flickr.OutcomeAbsent
}

func testPerson(nsid string) *flickr.Person {
	return &flickr.Person{
		NSID:       nsid,
		IsPro:      json.Number("1"),
		IconServer: "4419",
		IconFarm:   json.Number("5"),
		Username:   flickr.Content{Text: "shutterbug"},
		Realname:   flickr.Content{Text: "Sam Shutter"},
		ProfileURL: flickr.Content{Text: "https://www.flickr.com/people/shutterbug/"},
	}
}

func TestResolveKnownUser(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.people["11111111@N00"] = testPerson("11111111@N00")

	resolver := NewResolver(fetcher, NewCache(), logger.NewTestLogger())
	info := resolver.Resolve("11111111@N00")

	assert.Equal(t, "Sam Shutter", info.DisplayName)
	assert.Equal(t, "shutterbug", info.Username)
	assert.Equal(t, "Sam Shutter", info.Realname)
	assert.Equal(t, 1, info.IsPro)
	assert.Equal(t, "https://farm5.staticflickr.com/4419/buddyicons/11111111@N00.jpg", info.AvatarURL)
	assert.Equal(t, "https://www.flickr.com/people/shutterbug/", info.ProfileURL)
}

func TestResolveDisplayNameFallsBackToUsername(t *testing.T) {
	person := testPerson("11111111@N00")
	person.Realname = flickr.Content{}

	fetcher := newFakeFetcher()
	fetcher.people["11111111@N00"] = person

	resolver := NewResolver(fetcher, NewCache(), logger.NewTestLogger())
	info := resolver.Resolve("11111111@N00")

	assert.Equal(t, "shutterbug", info.DisplayName)
}

func TestResolveCachesSingleLookup(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.people["11111111@N00"] = testPerson("11111111@N00")

	cache := NewCache()
	resolver := NewResolver(fetcher, cache, logger.NewTestLogger())

	for i := 0; i < 5; i++ {
		resolver.Resolve("11111111@N00")
	}

	assert.Equal(t, 1, fetcher.calls["11111111@N00"], "repeated resolutions must hit the cache")
	assert.Equal(t, 1, cache.Len())
}

func TestResolveUnresolvableUserSynthesizesFallback(t *testing.T) {
	fetcher := newFakeFetcher()
	resolver := NewResolver(fetcher, NewCache(), logger.NewTestLogger())

	info := resolver.Resolve("deleted@N00")

	assert.Equal(t, "deleted@N00", info.DisplayName)
	assert.Equal(t, "deleted@N00", info.Username)
	assert.Empty(t, info.Realname)
	assert.Equal(t, flickr.BuddyIconPlaceholder, info.AvatarURL)
	assert.Equal(t, 0, info.IsPro)
	assert.Equal(t, "https://www.flickr.com/people/deleted@N00/", info.ProfileURL)
}

func TestResolveFallbackIsCachedToo(t *testing.T) {
	fetcher := newFakeFetcher()
	resolver := NewResolver(fetcher, NewCache(), logger.NewTestLogger())

	resolver.Resolve("deleted@N00")
	resolver.Resolve("deleted@N00")

	assert.Equal(t, 1, fetcher.calls["deleted@N00"], "a failed lookup is not repeated within a run")
}

func TestCacheSnapshot(t *testing.T) {
	cache := NewCache()
	fetcher := newFakeFetcher()
	fetcher.people["11111111@N00"] = testPerson("11111111@N00")

	resolver := NewResolver(fetcher, cache, logger.NewTestLogger())
	resolver.Resolve("11111111@N00")
	resolver.Resolve("deleted@N00")

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 2)

	// Mutating the snapshot must not touch the cache
	delete(snapshot, "11111111@N00")
	assert.Equal(t, 2, cache.Len())
}
