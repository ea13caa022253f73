package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient("mtg-sorter-test/1.0", time.Millisecond, time.Second)
}

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "mtg-sorter-test/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestGetRetriesOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// Context with a deadline keeps the backoff sleeps from stalling the test
	// suite if retry behavior regresses.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, err := testClient().Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %s", body)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"details":"missing"}`))
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if string(statusErr.Body) != `{"details":"missing"}` {
		t.Errorf("Body = %s", statusErr.Body)
	}
}

func TestGetHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient().Get(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}
