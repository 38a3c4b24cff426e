package production

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo *memoryRepo) chi.Router {
	h := NewHandler(slog.Default(), NewService(slog.Default(), repo, nil))
	r := chi.NewRouter()
	r.Route("/production-orders", h.MountRoutes)
	return r
}

func TestCreateHandlerCarriesStageLinksFechaAndEstado(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	body := `{
		"no_pedido_id": "P-001",
		"producto_identificador": "CAJA-A",
		"fecha": "2026-08-01",
		"estado": "Abierta",
		"procesoRecepcionId": 11,
		"procesoAlmacenId": 42
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/production-orders/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		NoOrden string `json:"no_orden"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "OP-001", resp.NoOrden)

	require.NotNil(t, repo.lastCreate)
	require.Equal(t, "P-001", repo.lastCreate.NoPedidoID)
	require.Equal(t, "Abierta", repo.lastCreate.Estado)
	require.NotNil(t, repo.lastCreate.Fecha)
	require.Equal(t, "2026-08-01", repo.lastCreate.Fecha.Format("2006-01-02"))
	require.Equal(t, map[string]int64{"recepcion": 11, "almacen": 42}, repo.lastCreate.StageIDs)
}

func TestCreateHandlerDefaultsFechaAndEstado(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	body := `{"no_pedido_id": "P-002", "producto_identificador": "CAJA-B"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/production-orders/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.lastCreate)
	require.Nil(t, repo.lastCreate.Fecha)
	require.Empty(t, repo.lastCreate.Estado)
	require.Nil(t, repo.lastCreate.StageIDs)
	require.Equal(t, EstadoAbierta, repo.orders["OP-001"].EstadoDetallado)
}

func TestCreateHandlerRejectsMalformedFecha(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	body := `{"no_pedido_id": "P-003", "producto_identificador": "CAJA-C", "fecha": "01/08/2026"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/production-orders/", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, repo.lastCreate)
}

func TestCreateHandlerRequiresPedidoLine(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/production-orders/", strings.NewReader(`{"producto_identificador": "CAJA-D"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, repo.lastCreate)
}
