package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func identityProbe(captured **Identity, ran *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ran != nil {
			*ran = true
		}
		if id, ok := IdentityFromContext(r.Context()); ok {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareBindsIdentity(t *testing.T) {
	codec := testCodec(t, time.Hour)
	token, err := codec.Encode("adal", 42, []string{"tweet:read", "tweet:write"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var captured *Identity
	handler := Middleware(codec, nil)(identityProbe(&captured, nil))

	req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if captured == nil {
		t.Fatalf("expected identity to reach downstream handler")
	}
	if captured.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", captured.UserID)
	}
	if !captured.Can("tweet:write") || captured.Can("user:write") {
		t.Fatalf("unexpected action set %v", captured.Actions)
	}
}

func TestMiddlewareProceedsWithoutIdentity(t *testing.T) {
	codec := testCodec(t, time.Hour)
	expired, err := testCodec(t, -time.Minute).Encode("adal", 42, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cases := map[string]string{
		"no header":        "",
		"lowercase prefix": "bearer sometoken",
		"empty token":      "Bearer ",
		"garbage token":    "Bearer not-a-token",
		"expired token":    "Bearer " + expired,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var captured *Identity
			var ran bool
			handler := Middleware(codec, nil)(identityProbe(&captured, &ran))

			req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if !ran {
				t.Fatalf("downstream handler must still execute")
			}
			if captured != nil {
				t.Fatalf("expected no identity, got %+v", captured)
			}
			if res.Code != http.StatusOK {
				t.Fatalf("filter must not fail the request, got %d", res.Code)
			}
		})
	}
}

func TestMiddlewareIdentityDoesNotLeakAcrossRequests(t *testing.T) {
	codec := testCodec(t, time.Hour)
	token, err := codec.Encode("adal", 1, []string{"tweet:read"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	type outcome struct {
		identity *Identity
	}
	results := make([]outcome, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup

	run := func(slot int, header string) {
		defer wg.Done()
		handler := Middleware(codec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-start // hold both requests in-flight simultaneously
			if id, ok := IdentityFromContext(r.Context()); ok {
				results[slot].identity = id
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	wg.Add(2)
	go run(0, "Bearer "+token)
	go run(1, "")
	close(start)
	wg.Wait()

	if results[0].identity == nil || results[0].identity.UserID != 1 {
		t.Fatalf("authenticated request lost its identity: %+v", results[0].identity)
	}
	if results[1].identity != nil {
		t.Fatalf("anonymous request observed identity %+v", results[1].identity)
	}
}

func TestRequireActions(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireActions("tweet:write")(next)

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tweets", nil)
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.Code)
		}
	})

	t.Run("missing action", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tweets", nil)
		ctx := ContextWithIdentity(req.Context(), &Identity{UserID: 7, Actions: []string{"tweet:read"}})
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req.WithContext(ctx))
		if res.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", res.Code)
		}
	})

	t.Run("granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tweets", nil)
		ctx := ContextWithIdentity(req.Context(), &Identity{UserID: 7, Actions: []string{"tweet:read", "tweet:write"}})
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req.WithContext(ctx))
		if res.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.Code)
		}
	})
}

func TestRequireAnyAction(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireAnyAction("tweet:read", "tweet:write")(next)

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.Code)
		}
	})

	t.Run("none of the actions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
		ctx := ContextWithIdentity(req.Context(), &Identity{UserID: 7, Actions: []string{"user:read"}})
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req.WithContext(ctx))
		if res.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", res.Code)
		}
	})

	t.Run("one of the actions suffices", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
		ctx := ContextWithIdentity(req.Context(), &Identity{UserID: 7, Actions: []string{"tweet:write"}})
		res := httptest.NewRecorder()
		guarded.ServeHTTP(res, req.WithContext(ctx))
		if res.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.Code)
		}
	})
}
