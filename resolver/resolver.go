// Package resolver performs remote BIN lookups against the BIN data service and
// memoizes them for the life of a card entry session.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"git.thinkinpower.net/cardbin/mod"
)

var (
	ErrNotFound    = errors.New("bin not found")
	ErrEmptyLookup = errors.New("bin lookup returned no networks")
)

type Resolver interface {
	Resolve(ctx context.Context, bin string) (*mod.BinLookup, error)
}

type Func func(ctx context.Context, bin string) (*mod.BinLookup, error)

func (f Func) Resolve(ctx context.Context, bin string) (*mod.BinLookup, error) {
	return f(ctx, bin)
}

// HTTPResolver queries GET {baseURL}/bindb/query/{bin}.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPResolver{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *HTTPResolver) Resolve(ctx context.Context, bin string) (*mod.BinLookup, error) {
	var (
		req  *http.Request
		resp *http.Response
		err  error
	)
	endpoint := fmt.Sprintf("%s/bindb/query/%s", r.baseURL, url.PathEscape(bin))
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil); err != nil {
		return nil, errors.Wrap(err, "build bin lookup request")
	}
	req.Header.Set("Accept", "application/json")
	if resp, err = r.client.Do(req); err != nil {
		return nil, errors.Wrapf(err, "bin lookup %s", bin)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bin lookup %s: unexpected status %d", bin, resp.StatusCode)
	}
	var body mod.BinLookupResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(err, "decode bin lookup %s", bin)
	}
	switch body.Code {
	case mod.ResponseCodeSuccess:
	case mod.ResponseCodeNotFound:
		return nil, errors.Wrap(ErrNotFound, bin)
	default:
		return nil, errors.Errorf("bin lookup %s: code %d %s", bin, body.Code, body.Msg)
	}
	if body.Data == nil || len(body.Data.Networks) == 0 {
		return nil, errors.Wrap(ErrEmptyLookup, bin)
	}
	if body.Data.FirstDigits == "" {
		body.Data.FirstDigits = bin
	}
	return body.Data, nil
}
