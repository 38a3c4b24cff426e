package finance

import (
	"context"
	"fmt"
)

// Service is the reconciliation engine.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EffectiveTotal recomputes the totals that govern payment validation for a
// pedido. The result is never written back to the pedido row.
func (s *Service) EffectiveTotal(ctx context.Context, noPedido string) (*Totals, error) {
	header, err := s.repo.GetOrderHeader(ctx, noPedido)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLineQuantities(ctx, noPedido)
	if err != nil {
		return nil, fmt.Errorf("list line quantities: %w", err)
	}
	totals := Reconcile(NominalTotals{Subtotal: header.Subtotal, IVA: header.IVA, Total: header.Total}, lines)
	return &totals, nil
}

// SubmitPayment validates and records a payment in a single transaction. The
// pedido row is locked for the duration so two concurrent submissions cannot
// both pass the overpayment check against the same stale sum. When the
// cumulative paid amount reaches half of the effective total the pedido flips
// to Autorizado; the flip is one way and re-applying it is a no-op.
func (s *Service) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	var result *PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		header, err := repo.LockOrderHeader(ctx, req.NoPedido)
		if err != nil {
			return err
		}
		lines, err := repo.ListLineQuantities(ctx, req.NoPedido)
		if err != nil {
			return fmt.Errorf("list line quantities: %w", err)
		}
		totals := Reconcile(NominalTotals{Subtotal: header.Subtotal, IVA: header.IVA, Total: header.Total}, lines)

		paid, err := repo.SumPayments(ctx, req.NoPedido)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		if paid+req.Monto > totals.Total {
			return &OverpaymentError{
				Total:      totals.Total,
				Pagado:     paid,
				Intentado:  req.Monto,
				Recomputed: totals.Recomputed,
			}
		}

		pago, err := repo.InsertPayment(ctx, Payment{
			NoPedido:   req.NoPedido,
			FechaPago:  req.FechaPago,
			Monto:      req.Monto,
			MetodoPago: req.MetodoPago,
			FormaPago:  req.FormaPago,
		})
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		newTotal := paid + req.Monto
		if newTotal >= totals.Total*authorizeThreshold {
			if err := repo.SetOrderStatus(ctx, req.NoPedido, statusAutorizado); err != nil {
				return fmt.Errorf("authorize pedido: %w", err)
			}
		}

		result = &PaymentResult{
			Message:         "Pago registrado correctamente",
			Pago:            *pago,
			TotalReferencia: totals.Total,
			TotalPagado:     newTotal,
			SaldoPendiente:  totals.Total - newTotal,
			Recomputed:      totals.Recomputed,
			Nota:            TotalNota(totals.Recomputed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OrderStatus returns the pedido account statement: the header with its
// payment list and the balance against the recomputed effective total.
func (s *Service) OrderStatus(ctx context.Context, noPedido string) (*StatusView, error) {
	header, err := s.repo.GetOrderHeader(ctx, noPedido)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLineQuantities(ctx, noPedido)
	if err != nil {
		return nil, fmt.Errorf("list line quantities: %w", err)
	}
	totals := Reconcile(NominalTotals{Subtotal: header.Subtotal, IVA: header.IVA, Total: header.Total}, lines)

	payments, err := s.repo.ListPayments(ctx, noPedido)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	var paid float64
	for _, p := range payments {
		paid += p.Monto
	}

	return &StatusView{
		Pedido:         *header,
		Totales:        totals,
		Pagos:          payments,
		TotalPagado:    paid,
		SaldoPendiente: totals.Total - paid,
	}, nil
}
