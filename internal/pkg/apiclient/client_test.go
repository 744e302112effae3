package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTokens struct {
	token         string
	authenticated atomic.Int32
}

func (f *fakeTokens) Token() string        { return f.token }
func (f *fakeTokens) Authenticated(string) { f.authenticated.Add(1) }

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  Kind
		wantRetry bool
	}{
		{"unauthorized", 401, `{"message":"Unauthorized"}`, KindAuth, false},
		{"forbidden", 403, `{"message":"Forbidden"}`, KindAuth, false},
		{"conflict status", 409, `{"message":"Request already responded"}`, KindConflict, false},
		{"conflict by message on 400", 400, `{"message":"Already friends with this user"}`, KindConflict, false},
		{"conflict by message in envelope", 400, `{"success":false,"error":{"code":"DUP","message":"Friend request already sent"}}`, KindConflict, false},
		{"validation", 400, `{"message":"userId is required"}`, KindValidation, false},
		{"unprocessable", 422, `{"message":"bad shape"}`, KindValidation, false},
		{"not found", 404, `{"message":"No such route"}`, KindNotFound, false},
		{"method not allowed", 405, ``, KindNotFound, false},
		{"server error", 500, `{"message":"boom"}`, KindServer, true},
		{"unparsable error body", 502, `<html>gateway</html>`, KindServer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := New(ts.URL, &fakeTokens{token: "tok"}, time.Second, "test")
			err := c.Get(context.Background(), "/x", nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !IsKind(err, tt.wantKind) {
				t.Fatalf("got %v, want kind %q", err, tt.wantKind)
			}
			if IsRetryable(err) != tt.wantRetry {
				t.Fatalf("retryable = %v, want %v", IsRetryable(err), tt.wantRetry)
			}
		})
	}
}

func TestNoTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	c := New(ts.URL, &fakeTokens{token: ""}, time.Second, "test")
	err := c.Get(context.Background(), "/x", nil)
	if !IsAuth(err) {
		t.Fatalf("got %v, want auth error", err)
	}
	if hits.Load() != 0 {
		t.Fatal("a tokenless call reached the network")
	}
}

func TestDecodeBareAndEnveloped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bare":
			w.Write([]byte(`{"value":"plain"}`))
		case "/wrapped":
			w.Write([]byte(`{"success":true,"data":{"value":"inside"}}`))
		}
	}))
	defer ts.Close()

	c := New(ts.URL, &fakeTokens{token: "tok"}, time.Second, "test")

	var bare struct {
		Value string `json:"value"`
	}
	if err := c.Get(context.Background(), "/bare", &bare); err != nil {
		t.Fatal(err)
	}
	if bare.Value != "plain" {
		t.Fatalf("bare decode = %q, want plain", bare.Value)
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := c.Get(context.Background(), "/wrapped", &wrapped); err != nil {
		t.Fatal(err)
	}
	if wrapped.Value != "inside" {
		t.Fatalf("enveloped decode = %q, want inside", wrapped.Value)
	}
}

func TestAuthenticatedHookOnSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	tokens := &fakeTokens{token: "tok"}
	c := New(ts.URL, tokens, time.Second, "test")

	if err := c.Get(context.Background(), "/x", nil); err != nil {
		t.Fatal(err)
	}
	if tokens.authenticated.Load() != 1 {
		t.Fatalf("Authenticated hook fired %d times, want 1", tokens.authenticated.Load())
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := New(ts.URL, &fakeTokens{token: "tok"}, time.Second, "skillshikhi-go-test")
	if err := c.Post(context.Background(), "/x", map[string]string{"a": "b"}, nil); err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("X-Request-ID not set")
	}
	if gotUA != "skillshikhi-go-test" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
}

func TestPostPublicSkipsToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	// No token at all; a public call must still go through.
	c := New(ts.URL, &fakeTokens{token: ""}, time.Second, "test")
	if err := c.PostPublic(context.Background(), "/login", map[string]string{}, nil); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Fatalf("public call sent Authorization = %q", gotAuth)
	}
}

func TestTimeoutIsRetryableNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := New(ts.URL, &fakeTokens{token: "tok"}, 20*time.Millisecond, "test")
	err := c.Get(context.Background(), "/slow", nil)
	if !IsKind(err, KindNetwork) {
		t.Fatalf("got %v, want network error", err)
	}
	if !IsRetryable(err) {
		t.Fatal("timeout should be retryable")
	}
}

func TestConnectionRefusedIsNetwork(t *testing.T) {
	// Grab a port nothing listens on.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	c := New(addr, &fakeTokens{token: "tok"}, time.Second, "test")
	err := c.Get(context.Background(), "/x", nil)
	if !IsKind(err, KindNetwork) {
		t.Fatalf("got %v, want network error", err)
	}
}
