package retention

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/httpx"
)

type Handler struct {
	logger      *slog.Logger
	service     *Service
	defaultDays int
}

func NewHandler(logger *slog.Logger, service *Service, defaultDays int) *Handler {
	return &Handler{logger: logger, service: service, defaultDays: defaultDays}
}

// MountProductionRoutes registers the soft sweep under the production order
// prefix.
func (h *Handler) MountProductionRoutes(r chi.Router) {
	r.Delete("/cleanup-completed", h.sweepCompleted)
}

// MountOrderRoutes registers the deep sweep under the pedidos prefix.
func (h *Handler) MountOrderRoutes(r chi.Router) {
	r.Delete("/cleanup", h.purgeOrders)
}

// days reads the optional ?days= override, falling back to the configured
// retention window.
func (h *Handler) days(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.defaultDays, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) sweepCompleted(w http.ResponseWriter, r *http.Request) {
	days, err := h.days(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "days must be numeric")
		return
	}

	swept, err := h.service.SweepCompleted(r.Context(), days)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":              "Órdenes completadas marcadas como eliminadas",
		"ordenes_actualizadas": swept,
		"dias":                 days,
	})
}

func (h *Handler) purgeOrders(w http.ResponseWriter, r *http.Request) {
	days, err := h.days(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "days must be numeric")
		return
	}

	report, err := h.service.PurgeOrders(r.Context(), days)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Limpieza profunda ejecutada",
		"reporte": report,
		"dias":    days,
	})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidWindow) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
		return
	}
	h.logger.Error("retention sweep failed", slog.String("error", err.Error()))
	httpx.RespondError(w, err)
}
