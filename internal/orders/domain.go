package orders

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a pedido.
type Status string

const (
	// StatusPendiente is the initial state of a freshly captured pedido.
	StatusPendiente Status = "Pendiente"
	// StatusAutorizado is set once cumulative payments reach half of the
	// effective total (see internal/finance).
	StatusAutorizado Status = "Autorizado"
	// StatusCancelado marks a cancelled pedido.
	StatusCancelado Status = "Cancelado"
)

var (
	ErrNotFound   = errors.New("pedido not found")
	ErrEmptyLines = errors.New("at least one product line is required")
)

// Order is a sales order (pedido) header with its product lines.
type Order struct {
	NoPedido             string    `json:"no_pedido"`
	NumCliente           string    `json:"num_cliente"`
	Fecha                time.Time `json:"fecha"`
	Observaciones        string    `json:"observaciones"`
	Subtotal             float64   `json:"subtotal"`
	IVA                  float64   `json:"iva"`
	Total                float64   `json:"total"`
	Entrega              string    `json:"entrega"`
	CondicionesPago      string    `json:"condiciones_pago"`
	Status               Status    `json:"status"`
	NumeroIdentificacion string    `json:"numero_identificacion"`

	Lines []OrderLine `json:"productos,omitempty"`
}

// OrderLine is one pedido_detalle row: ordered quantity and nominal amount
// for a product. Immutable once captured.
type OrderLine struct {
	IDPedido   string  `json:"id_pedido"`
	IDProducto string  `json:"id_producto"`
	Cantidad   float64 `json:"cantidad"`
	Importe    float64 `json:"importe"`
}

// CreateOrderRequest captures a new pedido with its lines. Totals are always
// recomputed server side from the lines; client supplied totals are ignored.
type CreateOrderRequest struct {
	NumCliente           string               `json:"num_cliente" validate:"required"`
	Fecha                *time.Time           `json:"fecha"`
	Observaciones        string               `json:"observaciones"`
	Entrega              string               `json:"entrega"`
	CondicionesPago      string               `json:"condiciones_pago"`
	NumeroIdentificacion string               `json:"numero_identificacion"`
	Anticipo             float64              `json:"anticipo" validate:"gte=0"`
	MetodoPago           string               `json:"metodo_pago"`
	FormaPago            string               `json:"forma_pago"`
	Productos            []CreateOrderLineReq `json:"productos" validate:"required,min=1,dive"`
}

// CreateOrderLineReq is one requested line.
type CreateOrderLineReq struct {
	IDProducto string  `json:"id_producto" validate:"required"`
	Cantidad   float64 `json:"cantidad" validate:"gt=0"`
	Importe    float64 `json:"importe" validate:"gte=0"`
}
