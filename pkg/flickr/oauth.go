package flickr

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	errs "flickrarchiver/pkg/errors"
)

// OAuth endpoints for the one-time interactive authorization exchange
const (
	requestTokenURL = "https://www.flickr.com/services/oauth/request_token"
	authorizeURL    = "https://www.flickr.com/services/oauth/authorize"
	accessTokenURL  = "https://www.flickr.com/services/oauth/access_token"
)

// AccessToken is the persistent credential obtained from the one-time
// authorization flow.
type AccessToken struct {
	Token       string `json:"oauth_token"`
	TokenSecret string `json:"oauth_token_secret"`
	UserNSID    string `json:"user_nsid"`
	Username    string `json:"username"`
	FullName    string `json:"fullname"`
}

// Authorizer runs the interactive OAuth 1.0a exchange: request token,
// authorization URL shown to the user, manually entered verifier, access
// token. It is a one-time concern; archival runs reuse the stored token.
type Authorizer struct {
	httpClient *http.Client
	apiKey     string
	apiSecret  string

	// endpoint overrides for tests
	requestTokenURL string
	authorizeURL    string
	accessTokenURL  string
}

// NewAuthorizer creates an authorizer for the given API key pair
func NewAuthorizer(apiKey, apiSecret string) *Authorizer {
	return &Authorizer{
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		apiKey:          apiKey,
		apiSecret:       apiSecret,
		requestTokenURL: requestTokenURL,
		authorizeURL:    authorizeURL,
		accessTokenURL:  accessTokenURL,
	}
}

// SetEndpoints overrides the OAuth endpoints (used by tests)
func (a *Authorizer) SetEndpoints(request, authorize, access string) {
	a.requestTokenURL = request
	a.authorizeURL = authorize
	a.accessTokenURL = access
}

// RequestToken obtains a temporary request token with out-of-band callback
func (a *Authorizer) RequestToken() (token, secret string, err error) {
	params := url.Values{}
	params.Set("oauth_callback", "oob")
	signRequest(params, "GET", a.requestTokenURL, a.apiKey, a.apiSecret, "", "")

	values, err := a.fetchFormEncoded(a.requestTokenURL + "?" + params.Encode())
	if err != nil {
		return "", "", fmt.Errorf("request token exchange failed: %w", err)
	}

	token = values.Get("oauth_token")
	secret = values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return "", "", &errs.Error{Type: errs.ErrorTypeAuth, Message: "request token response missing token"}
	}
	return token, secret, nil
}

// AuthorizationURL builds the URL the user must visit to authorize read access
func (a *Authorizer) AuthorizationURL(requestToken string) string {
	params := url.Values{}
	params.Set("oauth_token", requestToken)
	params.Set("perms", "read")
	return a.authorizeURL + "?" + params.Encode()
}

// ExchangeVerifier trades the request token plus the user-entered verifier
// code for a persistent access token.
func (a *Authorizer) ExchangeVerifier(requestToken, requestSecret, verifier string) (*AccessToken, error) {
	params := url.Values{}
	params.Set("oauth_verifier", verifier)
	signRequest(params, "GET", a.accessTokenURL, a.apiKey, a.apiSecret, requestToken, requestSecret)

	values, err := a.fetchFormEncoded(a.accessTokenURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("access token exchange failed: %w", err)
	}

	token := &AccessToken{
		Token:       values.Get("oauth_token"),
		TokenSecret: values.Get("oauth_token_secret"),
		UserNSID:    values.Get("user_nsid"),
		Username:    values.Get("username"),
		FullName:    values.Get("fullname"),
	}
	if token.Token == "" || token.TokenSecret == "" {
		return nil, &errs.Error{Type: errs.ErrorTypeAuth, Message: "access token response missing token"}
	}
	return token, nil
}

// Authorize runs the full interactive flow, printing the authorization URL
// to out and reading the verifier from in.
func (a *Authorizer) Authorize(in io.Reader, out io.Writer) (*AccessToken, error) {
	reqToken, reqSecret, err := a.RequestToken()
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "This application needs to authenticate to access your private photos.")
	fmt.Fprintln(out, "Please visit this URL to authorize the application:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, a.AuthorizationURL(reqToken))
	fmt.Fprintln(out)
	fmt.Fprint(out, "Enter the verification code from Flickr: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return nil, &errs.Error{Type: errs.ErrorTypeAuth, Message: "no verification code entered"}
	}
	verifier := strings.TrimSpace(scanner.Text())
	if verifier == "" {
		return nil, &errs.Error{Type: errs.ErrorTypeAuth, Message: "empty verification code"}
	}

	return a.ExchangeVerifier(reqToken, reqSecret, verifier)
}

// fetchFormEncoded performs a GET and parses the form-encoded body
func (a *Authorizer) fetchFormEncoded(endpoint string) (url.Values, error) {
	resp, err := a.httpClient.Get(endpoint)
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("failed to read body: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: fmt.Sprintf("oauth endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Code:    resp.StatusCode,
		}
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeParsing, Message: fmt.Sprintf("malformed oauth response: %v", err)}
	}
	return values, nil
}

// signRequest adds the OAuth 1.0a protocol parameters to params and signs
// the request with HMAC-SHA1 per RFC 5849.
func signRequest(params url.Values, httpMethod, baseURL, consumerKey, consumerSecret, token, tokenSecret string) {
	params.Set("oauth_consumer_key", consumerKey)
	params.Set("oauth_nonce", nonce())
	params.Set("oauth_signature_method", "HMAC-SHA1")
	params.Set("oauth_timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("oauth_version", "1.0")
	if token != "" {
		params.Set("oauth_token", token)
	}
	params.Del("oauth_signature")

	params.Set("oauth_signature", signature(params, httpMethod, baseURL, consumerSecret, tokenSecret))
}

// signature computes the HMAC-SHA1 signature over the parameter base string
func signature(params url.Values, httpMethod, baseURL, consumerSecret, tokenSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		for _, v := range params[k] {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}

	baseString := strings.ToUpper(httpMethod) + "&" +
		percentEncode(baseURL) + "&" +
		percentEncode(strings.Join(pairs, "&"))

	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode applies the stricter RFC 3986 encoding OAuth requires
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

// nonce returns a random hex string for the oauth_nonce parameter
func nonce() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to a timestamp-derived nonce; uniqueness per second
		// is sufficient for this client's request rate.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf[:])
}
