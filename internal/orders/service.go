package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/grupoebmx/backendgrupoeb/internal/finance"
)

// Service owns pedido creation and status changes.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create captures a pedido with its lines in one transaction. The subtotal is
// the sum of the line amounts; IVA and total follow the fixed 16% rate. An
// anticipo, when present, is recorded as the first payment inside the same
// transaction.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Productos) == 0 {
		return nil, ErrEmptyLines
	}

	fecha := time.Now()
	if req.Fecha != nil {
		fecha = *req.Fecha
	}

	var subtotal float64
	for _, line := range req.Productos {
		subtotal += line.Importe
	}
	iva := subtotal * finance.IVARate

	order := Order{
		NumCliente:           req.NumCliente,
		Fecha:                fecha,
		Observaciones:        req.Observaciones,
		Subtotal:             subtotal,
		IVA:                  iva,
		Total:                subtotal + iva,
		Entrega:              req.Entrega,
		CondicionesPago:      req.CondicionesPago,
		Status:               StatusPendiente,
		NumeroIdentificacion: req.NumeroIdentificacion,
	}

	var noPedido string
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		noPedido, err = repo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create pedido: %w", err)
		}

		for _, lineReq := range req.Productos {
			line := OrderLine{
				IDPedido:   noPedido,
				IDProducto: lineReq.IDProducto,
				Cantidad:   lineReq.Cantidad,
				Importe:    lineReq.Importe,
			}
			if err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert pedido line: %w", err)
			}
		}

		if req.Anticipo > 0 {
			metodo := req.MetodoPago
			if metodo == "" {
				metodo = "Efectivo"
			}
			forma := req.FormaPago
			if forma == "" {
				forma = "Anticipo"
			}
			if err := repo.InsertAnticipo(ctx, noPedido, time.Now(), req.Anticipo, metodo, forma); err != nil {
				return fmt.Errorf("insert anticipo: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, noPedido)
}

// Get returns a pedido with its lines.
func (s *Service) Get(ctx context.Context, noPedido string) (*Order, error) {
	return s.repo.Get(ctx, noPedido)
}

// Cancel marks a pedido as cancelled. Cancellation lives on the pedido only;
// production orders keep their own detailed state.
func (s *Service) Cancel(ctx context.Context, noPedido string) (*Order, error) {
	if err := s.repo.UpdateStatus(ctx, noPedido, StatusCancelado); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, noPedido)
}
