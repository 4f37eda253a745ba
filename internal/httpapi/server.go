package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/service"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
	"github.com/BrandonDHaskell/permwatch/internal/wire"
)

type Dependencies struct {
	Logger     *log.Logger
	Addr       string
	LogService *service.LogService
	// Gatherer backs GET /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	logService *service.LogService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		logService: d.LogService,
	}

	mux.HandleFunc("POST /v1/usage", s.handleSubmit)
	mux.HandleFunc("GET /v1/logs", s.handleFetch)
	mux.HandleFunc("DELETE /v1/logs", s.handleClear)
	mux.HandleFunc("GET /v1/logs/export", s.handleExport)
	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /v1/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /v1/badge", s.handleBadge)
	mux.HandleFunc("POST /v1/badge/reset", s.handleResetBadge)
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Usage log ───────────────────────────────────────────────────────────────

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var ev types.UsageEvent
	if isProtobuf(r) {
		var msg structpb.Struct
		if err := readProto(w, r, &msg); err != nil {
			writeBodyError(w, err, "bad_proto", "invalid protobuf body")
			return
		}
		ev = wire.UsageEventFromProto(&msg)
	} else if err := readJSON(w, r, &ev); err != nil {
		writeBodyError(w, err, "bad_json", "invalid JSON body")
		return
	}

	if err := s.logService.Submit(r.Context(), ev); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidKind):
			writeError(w, http.StatusBadRequest, "invalid_kind", err.Error())
		case errors.Is(err, service.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, "invalid_action", err.Error())
		default:
			s.logger.Printf("submit error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	recs, err := s.logService.Fetch(r.Context())
	if err != nil {
		s.logger.Printf("fetch error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	if wantsProtobuf(r) {
		writeProto(w, http.StatusOK, wire.UsageRecordsToProto(recs))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.logService.Clear(r.Context()); err != nil {
		s.logger.Printf("clear error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	// Buffer so a store failure can still produce a clean error status.
	var buf bytes.Buffer
	if err := s.logService.Export(r.Context(), &buf, format); err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "unsupported_format", err.Error())
			return
		}
		s.logger.Printf("export error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	ct, ext := "application/json", "json"
	if format == "csv" {
		ct, ext = "text/csv", "csv"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="permwatch-log.`+ext+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ── Settings ────────────────────────────────────────────────────────────────

// settingsBody distinguishes an omitted field from an explicit false.
type settingsBody struct {
	NotificationsEnabled *bool `json:"notificationsEnabled"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.logService.GetSettings(r.Context())
	if err != nil {
		s.logger.Printf("get settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	if wantsProtobuf(r) {
		writeProto(w, http.StatusOK, wire.SettingsToProto(settings))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := types.DefaultSettings()
	if isProtobuf(r) {
		var msg structpb.Struct
		if err := readProto(w, r, &msg); err != nil {
			writeBodyError(w, err, "bad_proto", "invalid protobuf body")
			return
		}
		settings = wire.SettingsFromProto(&msg)
	} else {
		var body settingsBody
		if err := readJSON(w, r, &body); err != nil {
			writeBodyError(w, err, "bad_json", "invalid JSON body")
			return
		}
		if body.NotificationsEnabled != nil {
			settings.NotificationsEnabled = *body.NotificationsEnabled
		}
	}

	if err := s.logService.UpdateSettings(r.Context(), settings); err != nil {
		s.logger.Printf("update settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	if wantsProtobuf(r) {
		writeProto(w, http.StatusOK, wire.SettingsToProto(settings))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ── Badge ───────────────────────────────────────────────────────────────────

func (s *Server) handleBadge(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.BadgeResponse{Count: s.logService.Badge()})
}

func (s *Server) handleResetBadge(w http.ResponseWriter, _ *http.Request) {
	s.logService.ResetBadge()
	writeJSON(w, http.StatusOK, types.BadgeResponse{Count: 0})
}
