package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/pkg/kit"
)

const readyTimeout = 1 * time.Second

// Catalog resolves catalog entries for the cart.
type Catalog interface {
	GetEntry(ctx context.Context, id int) (cart.Entry, error)
	ListEntries(ctx context.Context) ([]cart.Entry, error)
}

type Server struct {
	Store   Store
	Catalog Catalog
	Tokens  *TokenMaker
	Log     *zap.Logger

	metrics *cartMetrics
}

type cartView struct {
	Lines      cart.State `json:"lines"`
	TotalItems int        `json:"total_items"`
}

func newCartView(s cart.State) cartView {
	if s == nil {
		s = cart.Empty()
	}
	return cartView{Lines: s, TotalItems: cart.TotalItems(s)}
}

type addItemReq struct {
	ID int `json:"id"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Tokens.New()
	if err != nil {
		s.Log.Error("session issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, sess)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Catalog.ListEntries(r.Context())
	if err != nil {
		s.writeCatalogError(w, r, err, 0)
		return
	}
	kit.WriteJSON(w, http.StatusOK, entries)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := SessionFromContext(r.Context())

	st, err := s.Store.Load(r.Context(), sid)
	if err != nil {
		s.writeStoreError(w, r, err, sid)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newCartView(st))
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	sid, _ := SessionFromContext(r.Context())

	st, err := s.Store.Load(r.Context(), sid)
	if err != nil {
		s.writeStoreError(w, r, err, sid)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]int{"total_items": cart.TotalItems(st)})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := SessionFromContext(r.Context())

	var req addItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.ID <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "id must be positive", nil)
		return
	}

	entry, err := s.Catalog.GetEntry(r.Context(), req.ID)
	if err != nil {
		s.metrics.observe(opAdd, resultError, 0)
		s.writeCatalogError(w, r, err, req.ID)
		return
	}

	st, err := s.Store.Update(r.Context(), sid, func(cur cart.State) cart.State {
		return cart.Add(cur, entry)
	})
	if err != nil {
		s.metrics.observe(opAdd, resultError, 0)
		s.writeStoreError(w, r, err, sid)
		return
	}

	s.metrics.observe(opAdd, resultOK, cart.TotalItems(st))
	kit.WriteJSON(w, http.StatusOK, newCartView(st))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := SessionFromContext(r.Context())

	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id", map[string]any{"id": raw})
		return
	}

	present := false
	st, err := s.Store.Update(r.Context(), sid, func(cur cart.State) cart.State {
		_, present = cart.Find(cur, id)
		return cart.Remove(cur, id)
	})
	if err != nil {
		s.metrics.observe(opRemove, resultError, 0)
		s.writeStoreError(w, r, err, sid)
		return
	}

	result := resultOK
	if !present {
		result = resultNoop
	}
	s.metrics.observe(opRemove, result, cart.TotalItems(st))
	kit.WriteJSON(w, http.StatusOK, newCartView(st))
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error, id int) {
	switch {
	case errors.Is(err, ErrCatalogNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
	case errors.Is(err, ErrCatalogUnavailable):
		s.Log.Warn("catalog unavailable", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.Log.Warn("catalog error", zap.Error(err), zap.Int("product_id", id))
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, sid string) {
	switch {
	case errors.Is(err, ErrConflict):
		kit.WriteError(w, r, http.StatusConflict, "cart busy, retry", nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.Log.Error("cart store failed", zap.Error(err), zap.String("session_id", sid))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
