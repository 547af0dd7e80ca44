package flickr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "flickrarchiver/pkg/errors"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/retry"
)

// Flickr API error codes the gateway cares about
const (
	// codeUnavailable is "Service currently unavailable"
	codeUnavailable = 105
	// codeNotFound covers "Photo/User not found" style failures
	codeNotFound = 1
	// codePermissionDenied covers permission failures on private resources
	codePermissionDenied = 2
)

// Client is the retrying gateway over Flickr's REST API. Each exported
// method maps to one remote operation; operations whose resource may
// legitimately be absent return a tagged Outcome with a usable empty
// payload instead of an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	token      string
	tokenSec   string
	userAgent  string
	retrier    *retry.APIRetrier
	logger     logger.Logger
}

// NewClient creates a new gateway client
func NewClient(apiKey, apiSecret string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		userAgent:  "flickrarchiver/1.0",
		retrier:    retry.NewAPIRetrier(3, log),
		logger:     log,
	}
}

// SetBaseURL overrides the REST endpoint (used by tests)
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetMaxRetries adjusts the retry budget for API calls
func (c *Client) SetMaxRetries(n int) {
	if n > 0 {
		c.retrier = retry.NewAPIRetrier(n, c.logger)
	}
}

// SetRetryPolicy adjusts the retry budget and backoff delays for API calls.
// Non-positive delays keep the defaults.
func (c *Client) SetRetryPolicy(maxRetries int, retryDelay, unavailableDelay time.Duration) {
	if maxRetries <= 0 {
		return
	}
	c.retrier = retry.NewAPIRetrierWithDelays(maxRetries, retryDelay, unavailableDelay, c.logger)
}

// SetUserAgent overrides the User-Agent header
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// SetAccessToken installs a persistent OAuth access credential. Calls made
// without a token are unsigned and can only read public data.
func (c *Client) SetAccessToken(token, tokenSecret string) {
	c.token = token
	c.tokenSec = tokenSecret
}

// HasAccessToken reports whether an OAuth access credential is installed
func (c *Client) HasAccessToken() bool {
	return c.token != ""
}

// call performs one REST method call with the gateway retry policy and
// decodes the enveloped response into target.
func (c *Client) call(method string, params url.Values, target interface{}) error {
	return c.retrier.Do(func() error {
		return c.callOnce(method, params, target)
	})
}

// callOnce performs a single REST request without retries
func (c *Client) callOnce(method string, params url.Values, target interface{}) error {
	query := methodParams(method)
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}

	if c.token != "" {
		signRequest(query, "GET", c.baseURL, c.apiKey, c.apiSecret, c.token, c.tokenSec)
	} else {
		query.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	c.logger.DebugWithFields("calling REST method", map[string]interface{}{
		"method": method,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse REST response", map[string]interface{}{
			"method":       method,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if env.Stat != "ok" {
		return apiError(method, env)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse %s payload: %v", method, err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("REST method completed", map[string]interface{}{
		"method":   method,
		"duration": time.Since(start),
	})

	return nil
}

// apiError maps a failed Flickr envelope to a typed error
func apiError(method string, env envelope) error {
	switch {
	case env.Code == codeUnavailable || strings.Contains(env.Message, "not currently available"):
		return &errs.Error{
			Type:    errs.ErrorTypeServiceUnavailable,
			Message: fmt.Sprintf("%s: %s", method, env.Message),
			Code:    env.Code,
		}
	case env.Code == codeNotFound || env.Code == codePermissionDenied:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: fmt.Sprintf("%s: %s", method, env.Message),
			Code:    env.Code,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("%s: %s", method, env.Message),
			Code:    env.Code,
		}
	}
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: "authentication required", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: "resource not found", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return nil
	}
}

// GetPhotos lists a page of the user's own photos (public and private)
func (c *Client) GetPhotos(userID string, page, perPage int) (*PhotoList, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("extras", ListingExtras)

	var resp photoListResponse
	if err := c.call(methodGetPhotos, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photos, nil
}

// GetUserFavorites lists a page of the photos the user has favorited
func (c *Client) GetUserFavorites(userID string, page, perPage int) (*PhotoList, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("extras", FavoritesExtras)

	var resp photoListResponse
	if err := c.call(methodUserFavorites, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photos, nil
}

// GetPhotoInfo fetches the detailed info record for a photo
func (c *Client) GetPhotoInfo(photoID string) (*PhotoInfo, error) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp photoInfoResponse
	if err := c.call(methodGetPhotoInfo, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photo, nil
}

// GetSizes fetches all available sizes for a photo
func (c *Client) GetSizes(photoID string) (*SizeList, error) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp sizesResponse
	if err := c.call(methodGetSizes, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Sizes, nil
}

// GetPhotosets lists all of the user's albums
func (c *Client) GetPhotosets(userID string) ([]Photoset, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("per_page", strconv.Itoa(MaxPageSize))

	var resp photosetsResponse
	if err := c.call(methodGetPhotosets, params, &resp); err != nil {
		return nil, err
	}
	return resp.Photosets.Photoset, nil
}

// GetComments fetches a photo's comments. Absence of comments is normal
// and yields an empty slice with OutcomeAbsent.
func (c *Client) GetComments(photoID string) ([]Comment, Outcome) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp commentsResponse
	if err := c.call(methodGetComments, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetComments, photoID, err)
	}
	return resp.Comments.Comment, OutcomeOK
}

// GetFavorites fetches the users who favorited a photo (single page of 500)
func (c *Client) GetFavorites(photoID string) ([]FavoritePerson, Outcome) {
	params := url.Values{}
	params.Set("photo_id", photoID)
	params.Set("per_page", strconv.Itoa(MaxPageSize))

	var resp favoritesResponse
	if err := c.call(methodGetFavorites, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetFavorites, photoID, err)
	}
	return resp.Photo.Person, OutcomeOK
}

// GetExif fetches a photo's EXIF triples
func (c *Client) GetExif(photoID string) ([]Exif, Outcome) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp exifResponse
	if err := c.call(methodGetExif, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetExif, photoID, err)
	}
	return resp.Photo.Exif, OutcomeOK
}

// GetGeo fetches a photo's geolocation. Photos without geo data report
// OutcomeAbsent.
func (c *Client) GetGeo(photoID string) (*GeoLocation, Outcome) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp geoResponse
	if err := c.call(methodGetGeo, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetGeo, photoID, err)
	}
	return &resp.Photo.Location, OutcomeOK
}

// GetContexts fetches the albums a photo belongs to
func (c *Client) GetContexts(photoID string) ([]ContextSet, Outcome) {
	params := url.Values{}
	params.Set("photo_id", photoID)

	var resp contextsResponse
	if err := c.call(methodGetAllContexts, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetAllContexts, photoID, err)
	}
	return resp.Set, OutcomeOK
}

// GetUserInfo fetches display metadata for a user
func (c *Client) GetUserInfo(userID string) (*Person, Outcome) {
	params := url.Values{}
	params.Set("user_id", userID)

	var resp personResponse
	if err := c.call(methodGetUserInfo, params, &resp); err != nil {
		return nil, c.classifyAbsence(methodGetUserInfo, userID, err)
	}
	return &resp.Person, OutcomeOK
}

// classifyAbsence distinguishes a legitimately missing resource from an
// exhausted-retries failure; both yield empty payloads upstream.
func (c *Client) classifyAbsence(method, id string, err error) Outcome {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeNotFound {
		c.logger.DebugWithFields("resource absent", map[string]interface{}{
			"method": method,
			"id":     id,
		})
		return OutcomeAbsent
	}

	c.logger.WarnWithFields("operation failed, using empty default", map[string]interface{}{
		"method": method,
		"id":     id,
		"error":  err.Error(),
	})
	return OutcomeFailed
}

// DownloadTo streams a binary URL to the given writer. Non-2xx responses
// are failures.
func (c *Client) DownloadTo(rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &errs.Error{Type: errs.ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: fmt.Sprintf("download returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("failed to stream body: %v", err)}
	}
	return n, nil
}
