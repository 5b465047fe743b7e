package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

// NewReverseProxy forwards to target and answers upstream failures with
// the usual JSON error body.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("proxy target must be an absolute url: " + target)
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warn("upstream failed",
			zap.String("upstream", u.Host),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
	}
	return p, nil
}

// AuthSession checks the session token at the edge so that invalid tokens
// never reach the storefront. The header is forwarded unchanged.
func AuthSession(tokens *storefront.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing session token", nil)
				return
			}
			if _, err := tokens.Parse(raw); err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid session token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
