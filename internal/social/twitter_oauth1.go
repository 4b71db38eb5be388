package social

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// oauth1Signer produces OAuth 1.0a Authorization headers for the v1.1 media
// endpoint. Twitter still requires user-context OAuth1 there even though
// tweet creation moved to OAuth2. nonce and now are injectable for tests.
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
	nonce          func() string
	now            func() time.Time
}

func newOAuth1Signer(consumerKey, consumerSecret, token, tokenSecret string) *oauth1Signer {
	return &oauth1Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		token:          token,
		tokenSecret:    tokenSecret,
		nonce:          randomNonce,
		now:            time.Now,
	}
}

func (s *oauth1Signer) configured() bool {
	return s.consumerKey != "" && s.consumerSecret != "" && s.token != "" && s.tokenSecret != ""
}

// authorizationHeader signs method+rawURL with the given request parameters.
// For multipart bodies the parameter map must be empty: only oauth_*
// parameters enter the signature base string.
func (s *oauth1Signer) authorizationHeader(method, rawURL string, params map[string]string) string {
	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", s.now().Unix()),
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	all := make(map[string]string, len(oauth)+len(params))
	for k, v := range oauth {
		all[k] = v
	}
	for k, v := range params {
		all[k] = v
	}

	oauth["oauth_signature"] = s.signature(method, rawURL, all)

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", percentEncode(k), percentEncode(oauth[k])))
	}
	return "OAuth " + strings.Join(pairs, ", ")
}

func (s *oauth1Signer) signature(method, rawURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	encoded := make(map[string]string, len(params))
	for k, v := range params {
		ek := percentEncode(k)
		keys = append(keys, ek)
		encoded[ek] = percentEncode(v)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+encoded[k])
	}
	paramString := strings.Join(pairs, "&")

	base := strings.ToUpper(method) + "&" + percentEncode(rawURL) + "&" + percentEncode(paramString)
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode implements RFC 3986 encoding as OAuth1 requires it: only
// unreserved characters pass through, everything else becomes uppercase %XX.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

func randomNonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
