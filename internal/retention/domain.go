// Package retention ages out completed production orders. The soft sweep
// hides them; the deep sweep removes them and any pedidos left with nothing
// in production.
package retention

import "time"

// PurgeReport breaks a deep sweep down by table.
type PurgeReport struct {
	Cutoff        time.Time        `json:"cutoff"`
	OrdersPurged  int64            `json:"ordenes_eliminadas"`
	PedidosPurged int64            `json:"pedidos_eliminados"`
	StageRows     map[string]int64 `json:"procesos_eliminados"`
	PagosPurged   int64            `json:"pagos_eliminados"`
}

// Cutoff converts a retention window in days to the timestamp before which
// completed orders qualify for sweeping.
func Cutoff(now time.Time, olderThanDays int) time.Time {
	return now.AddDate(0, 0, -olderThanDays)
}
