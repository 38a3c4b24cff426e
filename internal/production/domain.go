// Package production manages órdenes de producción: one work order per
// pedido line, carrying an OP-### code and links into every pipeline stage.
package production

import (
	"errors"
	"fmt"
	"time"
)

const (
	EstadoAbierta    = "Abierta"
	EstadoCompletada = "Completada"
)

var ErrNotFound = errors.New("orden de producción not found")

// FormatCode renders the sequential folio as an order code. Width grows past
// three digits: folio 1000 becomes OP-1000.
func FormatCode(folio int64) string {
	return fmt.Sprintf("OP-%03d", folio)
}

// Order is one production order row.
type Order struct {
	NoOrden               string     `json:"no_orden"`
	NoPedidoID            string     `json:"no_pedido_id"`
	ProductoIdentificador string     `json:"producto_identificador"`
	EstadoDetallado       string     `json:"estado_detallado"`
	FechaCreacion         time.Time  `json:"fecha_creacion"`
	FechaCompletada       *time.Time `json:"fecha_completada,omitempty"`
	Eliminada             bool       `json:"eliminada"`
}

// CreateRequest opens a production order against a pedido line. Stage ids,
// keyed by stage name, may be pre-supplied when the floor captured process
// rows before the order was opened. Fecha and Estado default to now/Abierta
// when empty.
type CreateRequest struct {
	NoPedidoID            string
	ProductoIdentificador string
	Fecha                 *time.Time
	Estado                string
	StageIDs              map[string]int64
}

// LookupResult answers the order-existence probe used by the capture screens.
type LookupResult struct {
	Exists  bool   `json:"existe"`
	NoOrden string `json:"no_orden,omitempty"`
}

// StageDetail is one stage's columns in the composite view; nil when the
// stage has not been recorded yet.
type StageDetail map[string]any

// FullDetail is the composite view of an order: its header, the pedido line
// context, and whichever of the eight stage records exist.
type FullDetail struct {
	Order    Order                  `json:"orden"`
	Producto string                 `json:"producto"`
	Cliente  string                 `json:"num_cliente"`
	Cantidad float64                `json:"cantidad_pedido"`
	Stages   map[string]StageDetail `json:"procesos"`
}
