package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"Storefront/internal/cart"
)

var (
	ErrCatalogNotFound    = errors.New("catalog product not found")
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogMalformed   = errors.New("catalog malformed response")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

const (
	catalogTimeout = 3 * time.Second

	breakerMinRequests  = 5
	breakerFailureRatio = 0.5
	breakerInterval     = 10 * time.Second
	breakerOpenTimeout  = 15 * time.Second
)

// CatalogClient reads entries from a catalog service speaking the
// /products API. Calls go through a circuit breaker; it does not retry
// or cache.
type CatalogClient struct {
	BaseURL string
	Client  *http.Client

	cb *gobreaker.CircuitBreaker
}

func NewCatalogClient(baseURL string, log *zap.Logger) *CatalogClient {
	if log == nil {
		log = zap.NewNop()
	}

	st := gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && ratio >= breakerFailureRatio
		},
		// Not-found lookups and cancelled callers do not count against the catalog.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrCatalogNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &CatalogClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: catalogTimeout},
		cb:      gobreaker.NewCircuitBreaker(st),
	}
}

func (c *CatalogClient) GetEntry(ctx context.Context, id int) (cart.Entry, error) {
	var e cart.Entry
	if err := c.fetch(ctx, "/products/"+strconv.Itoa(id), &e); err != nil {
		return cart.Entry{}, err
	}
	if e.ID != id {
		return cart.Entry{}, fmt.Errorf("%w: id=%d want=%d", ErrCatalogMalformed, e.ID, id)
	}
	return e, nil
}

func (c *CatalogClient) ListEntries(ctx context.Context) ([]cart.Entry, error) {
	out := make([]cart.Entry, 0)
	if err := c.fetch(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) fetch(ctx context.Context, path string, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCatalogUnavailable
	}
	return err
}

func (c *CatalogClient) do(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrCatalogNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrCatalogUnavailable, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
	}
	return nil
}
