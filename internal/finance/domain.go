// Package finance recomputes pedido totals from live production data and
// guards payment capture against overpayment.
package finance

import (
	"errors"
	"fmt"
	"time"
)

// IVARate is the fixed 16% tax applied to every pedido. It is baked into the
// business, not configurable per order.
const IVARate = 0.16

// authorizeThreshold is the paid fraction of the effective total at which a
// pedido flips to Autorizado.
const authorizeThreshold = 0.5

const statusAutorizado = "Autorizado"

var (
	ErrOrderNotFound = errors.New("pedido not found")
)

// NominalTotals are the pedido header amounts captured at creation time.
type NominalTotals struct {
	Subtotal float64
	IVA      float64
	Total    float64
}

// OrderHeader is the pedido projection the engine works with.
type OrderHeader struct {
	NoPedido   string    `json:"no_pedido"`
	NumCliente string    `json:"num_cliente"`
	Fecha      time.Time `json:"fecha"`
	Status     string    `json:"status"`
	Subtotal   float64   `json:"subtotal"`
	IVA        float64   `json:"iva"`
	Total      float64   `json:"total"`
}

// LineQuantities pairs a pedido line with the quantity its production order
// has actually booked into almacén (0 when no warehousing has happened).
type LineQuantities struct {
	IDProducto      string
	CantidadPedido  float64
	Importe         float64
	CantidadAlmacen float64
}

// LineBreakdown is the per-line result of a reconciliation pass.
type LineBreakdown struct {
	IDProducto      string  `json:"id_producto"`
	CantidadPedido  float64 `json:"cantidad_pedido"`
	CantidadAlmacen float64 `json:"cantidad_almacen"`
	Importe         float64 `json:"importe"`
	PrecioUnitario  float64 `json:"precio_unitario"`
	ImporteEfectivo float64 `json:"importe_efectivo"`
}

// Totals is an effective order total. Recomputed reports whether warehouse
// quantities replaced the nominal amounts. Never persisted: recomputed on
// every read and every payment attempt.
type Totals struct {
	Subtotal   float64         `json:"subtotal"`
	IVA        float64         `json:"iva"`
	Total      float64         `json:"total"`
	Recomputed bool            `json:"tiene_productos_almacen"`
	Lines      []LineBreakdown `json:"desglose,omitempty"`
}

// Payment is one pagos row. Append-only; the engine never edits or removes
// payments.
type Payment struct {
	ID         int64     `json:"id"`
	NoPedido   string    `json:"no_pedido"`
	FechaPago  time.Time `json:"fecha_pago"`
	Monto      float64   `json:"monto"`
	MetodoPago string    `json:"metodo_pago"`
	FormaPago  string    `json:"forma_pago"`
}

// PaymentRequest captures a payment submission.
type PaymentRequest struct {
	NoPedido   string
	FechaPago  time.Time
	Monto      float64
	MetodoPago string
	FormaPago  string
}

// PaymentResult is returned on a successful capture. Nota tells the cashier
// which total the validation ran against.
type PaymentResult struct {
	Message         string  `json:"message"`
	Pago            Payment `json:"pago"`
	TotalReferencia float64 `json:"total_referencia"`
	TotalPagado     float64 `json:"total_pagado"`
	SaldoPendiente  float64 `json:"saldo_pendiente"`
	Recomputed      bool    `json:"tiene_productos_almacen"`
	Nota            string  `json:"nota"`
}

// TotalNota explains whether the effective total came from almacén output or
// from the nominal pedido.
func TotalNota(recomputed bool) string {
	if recomputed {
		return "Total calculado con base en productos en almacén"
	}
	return "Total calculado con base en pedido original (productos aún no en almacén)"
}

// StatusView is the pedido account statement: header, payments and the
// recomputed balance.
type StatusView struct {
	Pedido         OrderHeader `json:"pedido"`
	Totales        Totals      `json:"totales"`
	Pagos          []Payment   `json:"pagos"`
	TotalPagado    float64     `json:"total_pagado"`
	SaldoPendiente float64     `json:"saldo_pendiente"`
}

// OverpaymentError rejects a payment that would push the cumulative sum past
// the effective total. It carries the figures the caller needs to correct the
// amount.
type OverpaymentError struct {
	Total      float64
	Pagado     float64
	Intentado  float64
	Recomputed bool
}

// Headroom is the amount still payable before hitting the effective total.
func (e *OverpaymentError) Headroom() float64 {
	return e.Total - e.Pagado
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("el monto %.2f excede el total del pedido: saldo disponible %.2f", e.Intentado, e.Headroom())
}
