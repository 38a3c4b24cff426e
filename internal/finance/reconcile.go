package finance

// Reconcile derives the effective totals for a pedido.
//
// When no line has quantity in almacén the nominal totals pass through
// untouched: physical output does not exist yet, so the captured order still
// governs. Once any line has warehoused quantity, each line amount is rebuilt
// as unit price (importe / cantidad pedida, 0 when the ordered quantity is 0)
// times the warehoused quantity, and the 16% IVA is reapplied on the new
// subtotal.
func Reconcile(nominal NominalTotals, lines []LineQuantities) Totals {
	recomputed := false
	for _, l := range lines {
		if l.CantidadAlmacen > 0 {
			recomputed = true
			break
		}
	}

	breakdown := make([]LineBreakdown, 0, len(lines))
	var subtotal float64
	for _, l := range lines {
		var unitPrice float64
		if l.CantidadPedido > 0 {
			unitPrice = l.Importe / l.CantidadPedido
		}
		effective := l.Importe
		if recomputed {
			effective = unitPrice * l.CantidadAlmacen
			subtotal += effective
		}
		breakdown = append(breakdown, LineBreakdown{
			IDProducto:      l.IDProducto,
			CantidadPedido:  l.CantidadPedido,
			CantidadAlmacen: l.CantidadAlmacen,
			Importe:         l.Importe,
			PrecioUnitario:  unitPrice,
			ImporteEfectivo: effective,
		})
	}

	if !recomputed {
		return Totals{
			Subtotal: nominal.Subtotal,
			IVA:      nominal.IVA,
			Total:    nominal.Total,
			Lines:    breakdown,
		}
	}

	iva := subtotal * IVARate
	return Totals{
		Subtotal:   subtotal,
		IVA:        iva,
		Total:      subtotal + iva,
		Recomputed: true,
		Lines:      breakdown,
	}
}
