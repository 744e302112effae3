package friends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Older deployments only expose POST /api/friends/respond; the client must
// fall back to it when the PUT route is missing.
func TestRespondFallbackRoute(t *testing.T) {
	var legacyBody map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/friends":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Cannot PUT /api/friends"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/friends/respond":
			json.NewDecoder(r.Body).Decode(&legacyBody)
			w.Write([]byte(`{"message":"Friend request accepted"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := NewClient(apiclient.New(ts.URL, staticTokens{"tok"}, time.Second, "test"))
	if err := c.Respond(context.Background(), "r1", DecisionAccept); err != nil {
		t.Fatalf("respond with fallback: %v", err)
	}

	// The legacy route speaks status vocabulary, not action vocabulary.
	if legacyBody["requestId"] != "r1" || legacyBody["status"] != "accepted" {
		t.Fatalf("legacy body = %v", legacyBody)
	}
}

func TestRespondPrimaryRouteErrorNotMasked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Request already responded"}`))
	}))
	defer ts.Close()

	c := NewClient(apiclient.New(ts.URL, staticTokens{"tok"}, time.Second, "test"))
	err := c.Respond(context.Background(), "r1", DecisionReject)
	if !apiclient.IsConflict(err) {
		t.Fatalf("got %v, want conflict passed through", err)
	}
}
