package production

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the production order endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/lookup", h.lookup)
	r.Get("/{code}", h.get)
	r.Put("/{code}/complete", h.complete)
	r.Get("/{code}/full-detail", h.fullDetail)
}

// createDTO is the wire shape of the order-opening request. Stage id field
// names match what the capture screens already send.
type createDTO struct {
	NoPedidoID            string `json:"no_pedido_id" validate:"required"`
	ProductoIdentificador string `json:"producto_identificador" validate:"required"`
	Fecha                 string `json:"fecha,omitempty"`
	Estado                string `json:"estado,omitempty"`

	ProcesoRecepcionID *int64 `json:"procesoRecepcionId,omitempty"`
	ProcesoImpresionID *int64 `json:"procesoImpresionId,omitempty"`
	ProcesoSuajeID     *int64 `json:"procesoSuajeId,omitempty"`
	ProcesoPegadoID    *int64 `json:"procesoPegadoId,omitempty"`
	ProcesoArmadoID    *int64 `json:"procesoArmadoId,omitempty"`
	ProcesoAlmacenID   *int64 `json:"procesoAlmacenId,omitempty"`
	ProcesoCalidadID   *int64 `json:"procesoCalidadId,omitempty"`
	ProcesoEnvioID     *int64 `json:"procesoEnvioId,omitempty"`
}

func (d createDTO) stageLinks() map[string]int64 {
	supplied := map[string]*int64{
		"recepcion": d.ProcesoRecepcionID,
		"impresion": d.ProcesoImpresionID,
		"suaje":     d.ProcesoSuajeID,
		"pegado":    d.ProcesoPegadoID,
		"armado":    d.ProcesoArmadoID,
		"almacen":   d.ProcesoAlmacenID,
		"calidad":   d.ProcesoCalidadID,
		"envio":     d.ProcesoEnvioID,
	}
	var links map[string]int64
	for name, id := range supplied {
		if id == nil {
			continue
		}
		if links == nil {
			links = make(map[string]int64)
		}
		links[name] = *id
	}
	return links
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var dto createDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	var fecha *time.Time
	if dto.Fecha != "" {
		parsed, err := time.Parse("2006-01-02", dto.Fecha)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "fecha must be YYYY-MM-DD")
			return
		}
		fecha = &parsed
	}

	code, err := h.service.Create(r.Context(), CreateRequest{
		NoPedidoID:            dto.NoPedidoID,
		ProductoIdentificador: dto.ProductoIdentificador,
		Fecha:                 fecha,
		Estado:                dto.Estado,
		StageIDs:              dto.stageLinks(),
	})
	if err != nil {
		h.logger.Error("create orden failed", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Orden de producción creada",
		"no_orden": code,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	noPedido := r.URL.Query().Get("pedido")
	if noPedido == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "pedido is required")
		return
	}
	producto := r.URL.Query().Get("producto")
	if producto == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "producto is required")
		return
	}

	result, err := h.service.Lookup(r.Context(), noPedido, producto)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Complete(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Orden marcada como completada",
		"orden":   order,
	})
}

func (h *Handler) fullDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.FullDetail(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Orden Not Found", err.Error())
		return
	}
	h.logger.Error("production request failed", slog.String("error", err.Error()))
	httpx.RespondError(w, err)
}
