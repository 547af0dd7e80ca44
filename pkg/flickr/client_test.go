package flickr

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrarchiver/pkg/errors"
	"flickrarchiver/pkg/logger"
)

// mockFlickrServer dispatches REST calls by the method query parameter
type mockFlickrServer struct {
	server    *httptest.Server
	calls     int32
	responses map[string]string
	status    int
}

func newMockFlickrServer(responses map[string]string) *mockFlickrServer {
	m := &mockFlickrServer{responses: responses, status: http.StatusOK}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.calls, 1)
		if m.status != http.StatusOK {
			w.WriteHeader(m.status)
			return
		}
		method := r.URL.Query().Get("method")
		body, ok := m.responses[method]
		if !ok {
			body = `{"stat":"fail","code":112,"message":"Method not found"}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	return m
}

func (m *mockFlickrServer) close() { m.server.Close() }

func newTestClient(t *testing.T, m *mockFlickrServer) *Client {
	t.Helper()
	client := NewClient("testkey", "testsecret", 5*time.Second, logger.NewTestLogger())
	client.SetBaseURL(m.server.URL + "/")
	client.SetMaxRetries(1)
	return client
}

func TestGetPhotos(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.people.getPhotos": `{
			"photos": {
				"page": 1, "pages": 2, "perpage": 100, "total": "150",
				"photo": [
					{"id": "100", "owner": "12345678@N00", "secret": "abc", "server": "65535", "title": "First", "media": "photo"},
					{"id": "101", "owner": "12345678@N00", "secret": "def", "server": "65535", "title": "Second", "media": "video"}
				]
			},
			"stat": "ok"
		}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	list, err := client.GetPhotos("12345678@N00", 1, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 2, list.Pages)
	require.Len(t, list.Photo, 2)
	assert.Equal(t, "100", list.Photo[0].ID)
	assert.Equal(t, "video", list.Photo[1].Media)

	total, err := list.Total.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(150), total)
}

func TestGetPhotoInfoParsesContentWrappers(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.getInfo": `{
			"photo": {
				"id": "100", "secret": "abc", "dateuploaded": "1577836800",
				"title": {"_content": "Sunset"},
				"description": {"_content": "Over the bay"},
				"views": "321",
				"media": "photo",
				"isfavorite": 0,
				"owner": {"nsid": "12345678@N00", "username": "tester", "realname": "Test User", "location": "Helsinki"},
				"dates": {"posted": "1577836800", "taken": "2020-01-01 12:00:00"},
				"comments": {"_content": "2"},
				"tags": {"tag": [{"id": "1", "raw": "sunset"}, {"id": "2", "raw": "golden hour"}]},
				"urls": {"url": [{"type": "photopage", "_content": "https://www.flickr.com/photos/tester/100/"}]}
			},
			"stat": "ok"
		}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	info, err := client.GetPhotoInfo("100")
	require.NoError(t, err)

	assert.Equal(t, "Sunset", info.Title.Text)
	assert.Equal(t, "Over the bay", info.Description.Text)
	assert.Equal(t, "2", info.Comments.Text)
	assert.Equal(t, "2020-01-01 12:00:00", info.Dates.Taken)
	require.Len(t, info.Tags.Tag, 2)
	assert.Equal(t, "golden hour", info.Tags.Tag[1].Raw)
	require.Len(t, info.URLs.URL, 1)
	assert.Equal(t, "photopage", info.URLs.URL[0].Type)

	// Views arrives as a numeric string and must still parse
	views, err := info.Views.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(321), views)
}

func TestGetPhotoInfoNotFound(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.getInfo": `{"stat":"fail","code":1,"message":"Photo not found"}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	_, err := client.GetPhotoInfo("100")
	require.Error(t, err)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNotFound, apiErr.Type)
	assert.Equal(t, 1, apiErr.Code)

	// Not-found is not retryable, so exactly one request was made
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.calls))
}

func TestServiceUnavailableMapsToRetryableError(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.getInfo": `{"stat":"fail","code":105,"message":"Service currently unavailable"}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	_, err := client.GetPhotoInfo("100")
	require.Error(t, err)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeServiceUnavailable, apiErr.Type)
	assert.True(t, errs.IsRetryable(apiErr.Type))
}

func TestSetRetryPolicyAppliesBudgetAndDelays(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.getInfo": `{"stat":"fail","code":105,"message":"Service currently unavailable"}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	client.SetRetryPolicy(2, time.Millisecond, time.Millisecond)

	start := time.Now()
	_, err := client.GetPhotoInfo("100")
	require.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&m.calls), "budget of 2 means exactly 2 attempts")
	assert.Less(t, time.Since(start), time.Second, "configured millisecond delays must replace the stock backoff")
}

func TestGetCommentsOutcomes(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		m := newMockFlickrServer(map[string]string{
			"flickr.photos.comments.getList": `{
				"comments": {"comment": [
					{"id": "c1", "author": "22222222@N00", "authorname": "friend", "datecreate": "1600000000", "permalink": "https://example.com/c1", "_content": "Nice shot!"}
				]},
				"stat": "ok"
			}`,
		})
		defer m.close()

		client := newTestClient(t, m)
		comments, outcome := client.GetComments("100")
		assert.Equal(t, OutcomeOK, outcome)
		require.Len(t, comments, 1)
		assert.Equal(t, "Nice shot!", comments[0].Text)
		assert.Equal(t, "22222222@N00", comments[0].Author)
	})

	t.Run("absent", func(t *testing.T) {
		m := newMockFlickrServer(map[string]string{
			"flickr.photos.comments.getList": `{"stat":"fail","code":1,"message":"Photo not found"}`,
		})
		defer m.close()

		client := newTestClient(t, m)
		comments, outcome := client.GetComments("100")
		assert.Equal(t, OutcomeAbsent, outcome)
		assert.Empty(t, comments)
	})

	t.Run("failed", func(t *testing.T) {
		m := newMockFlickrServer(map[string]string{
			"flickr.photos.comments.getList": `{"stat":"fail","code":999,"message":"Internal error"}`,
		})
		defer m.close()

		client := newTestClient(t, m)
		comments, outcome := client.GetComments("100")
		assert.Equal(t, OutcomeFailed, outcome)
		assert.Empty(t, comments)
	})
}

func TestGetGeoAbsent(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.geo.getLocation": `{"stat":"fail","code":2,"message":"Photo has no location information."}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	geo, outcome := client.GetGeo("100")
	assert.Equal(t, OutcomeAbsent, outcome)
	assert.Nil(t, geo)
}

func TestGetSizesParsesMixedWidthTypes(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.photos.getSizes": `{
			"sizes": {"candownload": 1, "size": [
				{"label": "Thumbnail", "width": "100", "height": "75", "source": "https://live.staticflickr.com/100_t.jpg", "url": "https://flickr.com/t", "media": "photo"},
				{"label": "Original", "width": 4000, "height": 3000, "source": "https://live.staticflickr.com/100_o.jpg", "url": "https://flickr.com/o", "media": "photo"}
			]},
			"stat": "ok"
		}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	sizes, err := client.GetSizes("100")
	require.NoError(t, err)
	require.Len(t, sizes.Size, 2)

	assert.Equal(t, 100, sizes.Size[0].WidthInt())
	assert.Equal(t, 4000, sizes.Size[1].WidthInt())
}

func TestGetUserInfo(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.people.getInfo": `{
			"person": {
				"nsid": "22222222@N00", "ispro": 1, "iconserver": "4419", "iconfarm": 5,
				"username": {"_content": "friend"},
				"realname": {"_content": "A Friend"},
				"profileurl": {"_content": "https://www.flickr.com/people/friend/"},
				"photosurl": {"_content": "https://www.flickr.com/photos/friend/"}
			},
			"stat": "ok"
		}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	person, outcome := client.GetUserInfo("22222222@N00")
	require.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, "friend", person.Username.Text)
	assert.Equal(t, "A Friend", person.Realname.Text)

	isPro, err := person.IsPro.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), isPro)
}

func TestGetUserInfoDeleted(t *testing.T) {
	m := newMockFlickrServer(map[string]string{
		"flickr.people.getInfo": `{"stat":"fail","code":1,"message":"User not found"}`,
	})
	defer m.close()

	client := newTestClient(t, m)
	person, outcome := client.GetUserInfo("gone@N00")
	assert.Equal(t, OutcomeAbsent, outcome)
	assert.Nil(t, person)
}

func TestHTTPServerErrorMapsToServerError(t *testing.T) {
	m := newMockFlickrServer(nil)
	m.status = http.StatusInternalServerError
	defer m.close()

	client := newTestClient(t, m)
	_, err := client.GetPhotoInfo("100")
	require.Error(t, err)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeServerError, apiErr.Type)
}

func TestUnsignedCallsCarryAPIKey(t *testing.T) {
	var gotAPIKey, gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.URL.Query().Get("api_key")
		gotSignature = r.URL.Query().Get("oauth_signature")
		fmt.Fprint(w, `{"photo":{"id":"100"},"stat":"ok"}`)
	}))
	defer server.Close()

	client := NewClient("testkey", "testsecret", 5*time.Second, logger.NewTestLogger())
	client.SetBaseURL(server.URL + "/")
	client.SetMaxRetries(1)

	_, err := client.GetPhotoInfo("100")
	require.NoError(t, err)
	assert.Equal(t, "testkey", gotAPIKey)
	assert.Empty(t, gotSignature)
}

func TestSignedCallsCarryOAuthParams(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"photo":{"id":"100"},"stat":"ok"}`)
	}))
	defer server.Close()

	client := NewClient("testkey", "testsecret", 5*time.Second, logger.NewTestLogger())
	client.SetBaseURL(server.URL + "/")
	client.SetMaxRetries(1)
	client.SetAccessToken("tok", "toksec")
	require.True(t, client.HasAccessToken())

	_, err := client.GetPhotoInfo("100")
	require.NoError(t, err)

	assert.Equal(t, "testkey", query["oauth_consumer_key"][0])
	assert.Equal(t, "tok", query["oauth_token"][0])
	assert.Equal(t, "HMAC-SHA1", query["oauth_signature_method"][0])
	assert.NotEmpty(t, query["oauth_signature"][0])
	assert.NotEmpty(t, query["oauth_nonce"][0])
}

func TestDownloadTo(t *testing.T) {
	payload := []byte("binary image data")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	client := NewClient("testkey", "testsecret", 5*time.Second, logger.NewTestLogger())

	var buf bytes.Buffer
	n, err := client.DownloadTo(server.URL+"/photo_o.jpg", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestDownloadToRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("testkey", "testsecret", 5*time.Second, logger.NewTestLogger())

	var buf bytes.Buffer
	_, err := client.DownloadTo(server.URL+"/missing.jpg", &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
