package pipeline

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the stage ledger under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{type}", h.recordStage)
}

// decoders maps each stage to a fresh payload so the JSON body lands on the
// right column set.
var decoders = map[StageType]func() Input{
	StageRecepcion: func() Input { return &RecepcionInput{} },
	StageImpresion: func() Input { return &ImpresionInput{} },
	StageSuaje:     func() Input { return &SuajeInput{} },
	StagePegado:    func() Input { return &PegadoInput{} },
	StageArmado:    func() Input { return &ArmadoInput{} },
	StageAlmacen:   func() Input { return &AlmacenInput{} },
	StageCalidad:   func() Input { return &CalidadInput{} },
	StageEnvio:     func() Input { return &EnvioInput{} },
}

func (h *Handler) recordStage(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStageType(chi.URLParam(r, "type"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Unknown Stage", err.Error())
		return
	}

	input := decoders[stage]()
	if err := httpx.DecodeJSON(r, input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}

	id, err := h.service.RecordStage(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			httpx.Problem(w, http.StatusNotFound, "Orden Not Found", err.Error())
		case errors.Is(err, ErrMissingFields):
			httpx.Problem(w, http.StatusBadRequest, "Missing Fields", err.Error())
		default:
			h.logger.Error("record stage failed",
				slog.String("stage", string(stage)),
				slog.String("error", err.Error()))
			httpx.RespondError(w, err)
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Proceso registrado correctamente",
		"proceso": string(stage),
		"id":      id,
	})
}
