package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Reference values from the OAuth 1.0a signing example in Twitter's API
// documentation.
func TestOAuth1SignatureMatchesDocumentedExample(t *testing.T) {
	s := newOAuth1Signer(
		"xvz1evFS4wEEPTGEFPHBog",
		"kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		"370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	)
	s.nonce = func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }
	s.now = func() time.Time { return time.Unix(1318622958, 0) }

	header := s.authorizationHeader(http.MethodPost, "https://api.twitter.com/1.1/statuses/update.json", map[string]string{
		"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
		"include_entities": "true",
	})

	wantSig := percentEncode("hCtSmYh+iHYCEqBWrE7C7hYmtUk=")
	if !strings.Contains(header, `oauth_signature="`+wantSig+`"`) {
		t.Errorf("header signature mismatch:\n%s", header)
	}
	if !strings.HasPrefix(header, "OAuth ") {
		t.Errorf("header must use the OAuth scheme: %s", header)
	}
}

func TestPercentEncode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"An encoded string!", "An%20encoded%20string%21"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"☄", "%E2%98%84"},
		{"safe-._~123", "safe-._~123"},
	}
	for _, tt := range tests {
		if got := percentEncode(tt.in); got != tt.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newTwitterAdapter(t *testing.T, uploadURL, apiURL string) *Twitter {
	t.Helper()
	return NewTwitter("ck", "cs", "at", "ats", "bearer-xyz", uploadURL, apiURL, zap.NewNop())
}

func TestTwitterUsesBothCredentialContexts(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "OAuth ") {
			t.Errorf("media upload must be OAuth1 signed, got %q", auth)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("upload is not multipart: %v", err)
		}
		if _, _, err := r.FormFile("media"); err != nil {
			t.Errorf("missing media file part: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"media_id_string": "7001"})
	}))
	defer upload.Close()

	var tweetPayload map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer bearer-xyz" {
			t.Errorf("tweet creation must use the OAuth2 bearer, got %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&tweetPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "tweet-1"}})
	}))
	defer api.Close()

	tw := newTwitterAdapter(t, upload.URL, api.URL)
	ctx := context.Background()
	if err := tw.Authenticate(ctx); err != nil {
		t.Fatal(err)
	}

	media, err := tw.UploadMedia(ctx, writeTempImage(t))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if media.ID != "7001" {
		t.Errorf("media id = %q", media.ID)
	}

	id, err := tw.Publish(ctx, "New app out now", "", media)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "tweet-1" {
		t.Errorf("tweet id = %q", id)
	}

	mediaObj, ok := tweetPayload["media"].(map[string]any)
	if !ok {
		t.Fatalf("tweet payload missing media: %v", tweetPayload)
	}
	ids := mediaObj["media_ids"].([]any)
	if len(ids) != 1 || ids[0] != "7001" {
		t.Errorf("media_ids = %v", ids)
	}
}

func TestTwitterReplyThreadsUnderTweet(t *testing.T) {
	var payload map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "reply-1"}})
	}))
	defer api.Close()

	tw := newTwitterAdapter(t, "http://127.0.0.1:0", api.URL)
	ctx := context.Background()
	if err := tw.Authenticate(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := tw.Reply(ctx, "tweet-1", "Get the app: https://example.com"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	reply, ok := payload["reply"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing reply block: %v", payload)
	}
	if reply["in_reply_to_tweet_id"] != "tweet-1" {
		t.Errorf("in_reply_to_tweet_id = %v", reply["in_reply_to_tweet_id"])
	}
}

func TestTwitterAuthenticateRequiresBothContexts(t *testing.T) {
	var authErr *AuthError

	missingOAuth1 := NewTwitter("", "", "", "", "bearer", "u", "a", zap.NewNop())
	if err := missingOAuth1.Authenticate(context.Background()); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError for missing OAuth1 keys, got %v", err)
	}

	missingBearer := NewTwitter("ck", "cs", "at", "ats", "", "u", "a", zap.NewNop())
	if err := missingBearer.Authenticate(context.Background()); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError for missing bearer, got %v", err)
	}
}

func TestTwitterPreAuthOperationsFailWithoutNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	tw := newTwitterAdapter(t, srv.URL, srv.URL)
	ctx := context.Background()

	var authErr *AuthError
	if _, err := tw.UploadMedia(ctx, "x.jpg"); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if _, err := tw.Publish(ctx, "t", "", nil); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if _, err := tw.Reply(ctx, "1", "t"); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no network calls, got %d", calls)
	}
}
