package finance

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/httpx"
)

// Handler exposes payment capture and the order account statement.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	printer  *message.Printer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		printer:  message.NewPrinter(language.Make("es-MX")),
	}
}

// MountPaymentRoutes registers payment capture under the API root.
func (h *Handler) MountPaymentRoutes(r chi.Router) {
	r.Post("/payments", h.submitPayment)
}

// MountOrderRoutes registers the account statement under the pedidos prefix.
func (h *Handler) MountOrderRoutes(r chi.Router) {
	r.Get("/{noPedido}/status", h.orderStatus)
}

type paymentDTO struct {
	NoPedido   string  `json:"no_pedido" validate:"required"`
	FechaPago  string  `json:"fecha_pago" validate:"required"`
	Monto      float64 `json:"monto" validate:"required,gt=0"`
	MetodoPago string  `json:"metodo_pago" validate:"required"`
	FormaPago  string  `json:"forma_pago" validate:"required"`
}

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	var dto paymentDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: faltan datos obligatorios", httpx.ErrValidation))
		return
	}
	fecha, err := time.Parse("2006-01-02", dto.FechaPago)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: fecha_pago must be YYYY-MM-DD", httpx.ErrValidation))
		return
	}

	result, err := h.service.SubmitPayment(r.Context(), PaymentRequest{
		NoPedido:   dto.NoPedido,
		FechaPago:  fecha,
		Monto:      dto.Monto,
		MetodoPago: dto.MetodoPago,
		FormaPago:  dto.FormaPago,
	})
	var overpay *OverpaymentError
	switch {
	case errors.As(err, &overpay):
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"message":                 "El monto excede el total del pedido",
			"detalle":                 h.printer.Sprintf("saldo disponible %.2f MXN", overpay.Headroom()),
			"total":                   fmt.Sprintf("%.2f", overpay.Total),
			"pagado_actual":           fmt.Sprintf("%.2f", overpay.Pagado),
			"saldo_disponible":        fmt.Sprintf("%.2f", overpay.Headroom()),
			"monto_intentado":         fmt.Sprintf("%.2f", overpay.Intentado),
			"tiene_productos_almacen": overpay.Recomputed,
		})
		return
	case errors.Is(err, ErrOrderNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: pedido %s", httpx.ErrNotFound, dto.NoPedido))
		return
	case err != nil:
		h.logger.Error("submit payment", slog.Any("error", err), slog.String("no_pedido", dto.NoPedido))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	noPedido := chi.URLParam(r, "noPedido")

	view, err := h.service.OrderStatus(r.Context(), noPedido)
	if errors.Is(err, ErrOrderNotFound) {
		httpx.RespondError(w, fmt.Errorf("%w: pedido %s", httpx.ErrNotFound, noPedido))
		return
	}
	if err != nil {
		h.logger.Error("order status", slog.Any("error", err), slog.String("no_pedido", noPedido))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, view)
}
