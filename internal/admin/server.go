package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/infra"
	"shopwarden/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// StatusSource exposes the sweeper's state string to the API.
type StatusSource interface {
	Status() string
}

// AuditStore is the read side of the audit trail and the shop mirror.
type AuditStore interface {
	GetAllShops() ([]domain.ShopInfo, error)
	GetAllItems() ([]domain.ItemInfo, error)
	RecentCorrections(limit int) ([]domain.CorrectionRecord, error)
	RecentSweeps(limit int) ([]domain.SweepRecord, error)
}

// Server is the operator HTTP surface.
type Server struct {
	limits  *service.LimitService
	sweeper StatusSource
	store   AuditStore
	hub     *Hub
}

// NewServer wires the admin surface. Store may be nil (embedded mode
// without persistence); the audit endpoints then return empty lists.
func NewServer(limits *service.LimitService, sweeper StatusSource, store AuditStore, hub *Hub) *Server {
	return &Server{
		limits:  limits,
		sweeper: sweeper,
		store:   store,
		hub:     hub,
	}
}

// Router builds the chi router for the admin surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(newMetricsCollector(infra.GlobalMetrics))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/stats", s.handleStats)

		r.Get("/limits", s.handleListLimits)
		r.Get("/limits/{itemID}", s.handleGetLimits)
		r.Put("/limits/{itemID}", s.handleSetLimits)
		r.Delete("/limits/{itemID}", s.handleClearLimits)
		r.Put("/interval", s.handleSetInterval)

		r.Get("/items", s.handleListItems)
		r.Get("/shops", s.handleListShops)
		r.Get("/corrections", s.handleListCorrections)
		r.Get("/sweeps", s.handleListSweeps)

		if s.hub != nil {
			r.Get("/ws", s.hub.HandleWS)
		}
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := "Ready."
	if s.sweeper != nil {
		status = s.sweeper.Status()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

type limitsResponse struct {
	SellFloors      []domain.ItemPriceLimit `json:"sell_floors"`
	BuyCeilings     []domain.ItemPriceLimit `json:"buy_ceilings"`
	TickIntervalSec int                     `json:"tick_interval_sec"`
}

func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	sell, buy := s.limits.Lists()
	writeJSON(w, http.StatusOK, limitsResponse{
		SellFloors:      sell,
		BuyCeilings:     buy,
		TickIntervalSec: int(s.limits.TickInterval() / time.Second),
	})
}

type itemLimitsResponse struct {
	ItemID  string          `json:"item_id"`
	Floor   decimal.Decimal `json:"floor"`
	Ceiling decimal.Decimal `json:"ceiling"`
}

func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	floor, ceiling, err := s.limits.LimitsFor(itemID)
	if err != nil {
		s.writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemLimitsResponse{ItemID: itemID, Floor: floor, Ceiling: ceiling})
}

type setLimitsRequest struct {
	Floor   *decimal.Decimal `json:"floor,omitempty"`
	Ceiling *decimal.Decimal `json:"ceiling,omitempty"`
}

func (s *Server) handleSetLimits(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req setLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Floor == nil && req.Ceiling == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "floor or ceiling required"})
		return
	}

	if req.Floor != nil {
		if err := s.limits.SetFloor(itemID, *req.Floor); err != nil {
			s.writeEditError(w, err)
			return
		}
	}
	if req.Ceiling != nil {
		if err := s.limits.SetCeiling(itemID, *req.Ceiling); err != nil {
			s.writeEditError(w, err)
			return
		}
	}

	s.handleListLimits(w, r)
}

func (s *Server) handleClearLimits(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if err := s.limits.Clear(itemID); err != nil {
		s.writeEditError(w, err)
		return
	}
	s.handleListLimits(w, r)
}

func (s *Server) writeEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnknownItem) || errors.Is(err, domain.ErrLimitNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

type setIntervalRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req setIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Seconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be positive"})
		return
	}

	if err := s.limits.SetTickInterval(time.Duration(req.Seconds) * time.Second); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tick_interval_sec": req.Seconds})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []domain.ItemInfo{})
		return
	}
	items, err := s.store.GetAllItems()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []domain.ShopInfo{})
		return
	}
	shops, err := s.store.GetAllShops()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func (s *Server) handleListCorrections(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []domain.CorrectionRecord{})
		return
	}
	recs, err := s.store.RecentCorrections(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []domain.SweepRecord{})
		return
	}
	recs, err := s.store.RecentSweeps(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
