package wikiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wikicull/wikicull/internal/testutil"
	"github.com/wikicull/wikicull/internal/wikiclient"
)

func TestNetHTTPClient_Get(t *testing.T) {
	t.Parallel()
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c, err := wikiclient.NewNetHTTPClient(wikiclient.Config{UserAgent: "wikicull-test"}, &testutil.DummyLogger{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("body = %q", resp.Body)
	}
	if gotUA != "wikicull-test" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestNetHTTPClient_NilRequest(t *testing.T) {
	t.Parallel()
	c, err := wikiclient.NewNetHTTPClient(wikiclient.Config{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Do(context.Background(), nil); err == nil {
		t.Error("nil request should error")
	}
}

func TestFactory(t *testing.T) {
	t.Parallel()
	c, err := wikiclient.New(wikiclient.Config{}, nil)
	if err != nil {
		t.Fatalf("default backend should be registered: %v", err)
	}
	defer c.Close()

	if _, err := wikiclient.New(wikiclient.Config{Backend: "no-such"}, nil); err == nil {
		t.Error("unknown backend must fail")
	}
}
