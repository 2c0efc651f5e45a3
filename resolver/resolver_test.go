package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"git.thinkinpower.net/cardbin/mod"
)

func newBinServer(t *testing.T, handler func(bin string) (int, interface{})) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bindb/query/", func(w http.ResponseWriter, r *http.Request) {
		bin := r.URL.Path[len("/bindb/query/"):]
		status, body := handler(bin)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func success(data *mod.BinLookup) mod.ResponseData {
	return mod.ResponseData{ResponseValue: mod.ResponseValue{Code: mod.ResponseCodeSuccess, Msg: "ok"}, Data: data}
}

func TestHTTPResolverSuccess(t *testing.T) {
	srv := newBinServer(t, func(bin string) (int, interface{}) {
		return http.StatusOK, success(&mod.BinLookup{
			FirstDigits: bin,
			Networks: []mod.RawNetworkRecord{
				{Value: "VISA", IssuerCountryCode: "FR"},
				{Value: "CARTES_BANCAIRES"},
			},
		})
	})
	res, err := NewHTTPResolver(srv.URL+"/", nil).Resolve(context.Background(), "55226611")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.FirstDigits != "55226611" || len(res.Networks) != 2 || res.Networks[0].IssuerCountryCode != "FR" {
		t.Fatalf("unexpected lookup %+v", res)
	}
}

func TestHTTPResolverErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    interface{}
		wantErr error
	}{
		{"not found", http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeNotFound, Msg: "not found"}, ErrNotFound},
		{"empty", http.StatusOK, success(&mod.BinLookup{FirstDigits: "1"}), ErrEmptyLookup},
		{"no data", http.StatusOK, success(nil), ErrEmptyLookup},
		{"failure code", http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeFailure, Msg: "boom"}, nil},
		{"server error", http.StatusInternalServerError, mod.ResponseValue{}, nil},
		{"malformed", http.StatusOK, "not an object", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newBinServer(t, func(string) (int, interface{}) { return tc.status, tc.body })
			_, err := NewHTTPResolver(srv.URL, nil).Resolve(context.Background(), "411111")
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && errors.Cause(err) != tc.wantErr {
				t.Fatalf("err = %v, want cause %v", err, tc.wantErr)
			}
		})
	}
}

func TestHTTPResolverHonoursContext(t *testing.T) {
	srv := newBinServer(t, func(bin string) (int, interface{}) {
		time.Sleep(200 * time.Millisecond)
		return http.StatusOK, success(&mod.BinLookup{FirstDigits: bin, Networks: []mod.RawNetworkRecord{{Value: "VISA"}}})
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := NewHTTPResolver(srv.URL, nil).Resolve(ctx, "411111"); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestCacheMemoizesAndCollapses(t *testing.T) {
	var upstream atomic.Int32
	release := make(chan struct{})
	c := NewCache(Func(func(ctx context.Context, bin string) (*mod.BinLookup, error) {
		upstream.Add(1)
		<-release
		return &mod.BinLookup{FirstDigits: bin, Networks: []mod.RawNetworkRecord{{Value: "VISA"}}}, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve(context.Background(), "41111111"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if _, err := c.Resolve(context.Background(), "41111111"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if upstream.Load() != 1 || c.Calls() != 1 {
		t.Fatalf("upstream calls = %d (%d), want 1", upstream.Load(), c.Calls())
	}
	if c.Len() != 1 {
		t.Fatalf("cache size = %d", c.Len())
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	var upstream atomic.Int32
	fail := true
	c := NewCache(Func(func(ctx context.Context, bin string) (*mod.BinLookup, error) {
		upstream.Add(1)
		if fail {
			return nil, errors.New("unavailable")
		}
		return &mod.BinLookup{FirstDigits: bin, Networks: []mod.RawNetworkRecord{{Value: "VISA"}}}, nil
	}))
	if _, err := c.Resolve(context.Background(), "411111"); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := c.Get("411111"); ok {
		t.Fatalf("failure must not be memoized")
	}
	fail = false
	if _, err := c.Resolve(context.Background(), "411111"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if upstream.Load() != 2 {
		t.Fatalf("upstream calls = %d, want 2", upstream.Load())
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(nil)
	c.Put("411111", &mod.BinLookup{FirstDigits: "411111", Networks: []mod.RawNetworkRecord{{Value: "VISA"}}})
	v, ok := c.Get("411111")
	if !ok {
		t.Fatalf("expected entry")
	}
	v.Networks[0].Value = "MASTERCARD"
	again, _ := c.Get("411111")
	if again.Networks[0].Value != "VISA" {
		t.Fatalf("cache entry mutated through returned value")
	}
}
