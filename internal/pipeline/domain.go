// Package pipeline records the outcome of each production stage against a
// production order: reception, printing, die-cut (suaje), gluing (pegado),
// assembly (armado), warehousing (almacén), quality and shipping.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// StageType identifies one of the eight pipeline stages.
type StageType string

const (
	StageRecepcion StageType = "recepcion"
	StageImpresion StageType = "impresion"
	StageSuaje     StageType = "suaje"
	StagePegado    StageType = "pegado"
	StageArmado    StageType = "armado"
	StageAlmacen   StageType = "almacen"
	StageCalidad   StageType = "calidad"
	StageEnvio     StageType = "envio"
)

var (
	ErrUnknownStage  = errors.New("unknown stage type")
	ErrOrderNotFound = errors.New("orden de producción not found")
	ErrMissingFields = errors.New("required stage fields missing")
)

// stageSpec carries the persistence metadata for one stage table: where the
// record lives, its serial id column, and the orden_produccion column that
// links back to it.
type stageSpec struct {
	table      string
	idColumn   string
	linkColumn string
}

var stageSpecs = map[StageType]stageSpec{
	StageRecepcion: {"proceso_recepcion", "id_proceso_recepcion", "proceso_recepcion_id"},
	StageImpresion: {"proceso_impresion", "id_proceso_impresion", "proceso_impresion_id"},
	StageSuaje:     {"proceso_suaje", "id_proceso_suaje", "proceso_suaje_id"},
	StagePegado:    {"proceso_pegado", "id_pegado", "proceso_pegado_id"},
	StageArmado:    {"proceso_armado", "idproceso_armado", "proceso_armado_id"},
	StageAlmacen:   {"proceso_almacen", "id_proceso_almacen", "proceso_almacen_id"},
	StageCalidad:   {"proceso_calidad", "idproceso_calidad", "proceso_calidad_id"},
	StageEnvio:     {"proceso_envio", "id_proceso_envio", "proceso_envio_id"},
}

// ParseStageType validates a stage name from the URL.
func ParseStageType(s string) (StageType, error) {
	t := StageType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := stageSpecs[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return t, nil
}

// Record is a stage row ready for insertion.
type Record struct {
	Type    StageType
	Columns []string
	Values  []any
}

// Input is a decoded stage payload.
type Input interface {
	// Record maps the payload onto its stage table.
	Record() Record
	// OrderCode returns the production order to link, empty when the stage
	// is recorded unattached.
	OrderCode() string
}

// RecepcionInput captures the board reception stage.
type RecepcionInput struct {
	CantidadRecibida       Count  `json:"cantidadRecibida"`
	CalidadMedidaCarton    string `json:"calidadMedidaCarton"`
	CalidadResistencia     string `json:"calidadrecistencia"`
	CertificadoCalidad     string `json:"certificadoCalidad"`
	AutorizacionRecepcion  string `json:"autorizacionRecepcion"`
	AutorizacionPlaneacion string `json:"autorizacionPlaneacion"`
	Estado                 string `json:"estado"`
	NoOrden                string `json:"no_orden"`
}

func (in RecepcionInput) Record() Record {
	return Record{
		Type: StageRecepcion,
		Columns: []string{
			"cantidad_recibida", "calidad_medida_carton", "calidad_resistencia",
			"certificado_calidad", "autorizacion_recepcion", "autorizacion_planeacion", "estado",
		},
		Values: []any{
			int64(in.CantidadRecibida), in.CalidadMedidaCarton, in.CalidadResistencia,
			in.CertificadoCalidad, in.AutorizacionRecepcion, in.AutorizacionPlaneacion, in.Estado,
		},
	}
}

func (in RecepcionInput) OrderCode() string { return in.NoOrden }

// ImpresionInput captures the printing stage.
type ImpresionInput struct {
	Cantidad              Count    `json:"cantidadImpresion"`
	CalidadTono           string   `json:"calidadTono"`
	CalidadMedidas        string   `json:"calidadMedidas"`
	AutorizacionImpresion string   `json:"autorizacionImpresion"`
	Merma                 Quantity `json:"merma"`
	TotalEntregadas       Count    `json:"totalEntregadas"`
	FirmaOperador         string   `json:"firmaOperador"`
	Estado                string   `json:"estado"`
	NoOrden               string   `json:"no_orden"`
}

func (in ImpresionInput) Record() Record {
	return Record{
		Type: StageImpresion,
		Columns: []string{
			"cantidad", "calidad_tono", "calidad_medidas", "autorizacion_impresion",
			"merma", "total_entregadas", "firma_operador", "estado",
		},
		Values: []any{
			int64(in.Cantidad), in.CalidadTono, in.CalidadMedidas, in.AutorizacionImpresion,
			float64(in.Merma), int64(in.TotalEntregadas), in.FirmaOperador, in.Estado,
		},
	}
}

func (in ImpresionInput) OrderCode() string { return in.NoOrden }

// SuajeInput captures the die-cut stage.
type SuajeInput struct {
	CalidadMedidas    string   `json:"calidadMedidas"`
	CalidadCuadre     string   `json:"calidadCuadre"`
	Suaje             string   `json:"suaje"`
	CalidadMarca      string   `json:"calidadMarca"`
	AutorizacionSuaje string   `json:"autorizacionSuaje"`
	Merma             Quantity `json:"merma"`
	TotalEntregadas   Count    `json:"totalEntregadas"`
	FirmaOperador     string   `json:"firmaOperador"`
	Estado            string   `json:"estado"`
	CantidadSuaje     Count    `json:"cantidadsuaje"`
	NoOrden           string   `json:"no_orden"`
}

func (in SuajeInput) Record() Record {
	return Record{
		Type: StageSuaje,
		Columns: []string{
			"calidad_medidas", "calidad_cuadre", "suaje", "calidad_marca", "autorizacion_suaje",
			"merma", "total_entregadas", "firma_operador", "estado", "cantidadsuaje",
		},
		Values: []any{
			in.CalidadMedidas, in.CalidadCuadre, in.Suaje, in.CalidadMarca, in.AutorizacionSuaje,
			float64(in.Merma), int64(in.TotalEntregadas), in.FirmaOperador, in.Estado, int64(in.CantidadSuaje),
		},
	}
}

func (in SuajeInput) OrderCode() string { return in.NoOrden }

// PegadoInput captures the gluing stage.
type PegadoInput struct {
	CantidadPegado     Count    `json:"cantidadPegado"`
	TipoPegado         string   `json:"tipoPegado"`
	CalidadCuadre      string   `json:"calidadCuadre"`
	CalidadDesgarre    string   `json:"calidadDesgarre"`
	CalidadMarcas      string   `json:"calidadMarcas"`
	AutorizacionPegado string   `json:"autorizacionPegado"`
	FirmaOperador      string   `json:"firmaOperador"`
	Merma              Quantity `json:"merma"`
	TotalEntregadas    Count    `json:"totalEntregadas"`
	Estado             string   `json:"estado"`
	NoOrden            string   `json:"no_orden"`
}

func (in PegadoInput) Record() Record {
	autorizacion := in.AutorizacionPegado
	if autorizacion == "" {
		autorizacion = "no"
	}
	firma := in.FirmaOperador
	if firma == "" {
		firma = "no"
	}
	estado := in.Estado
	if estado == "" {
		estado = "completado"
	}
	return Record{
		Type: StagePegado,
		Columns: []string{
			"cantidad_pegado", "tipo_pegado", "calidad_cuadre", "calidad_desgarre", "calidad_marcas",
			"autorizacion_pegado", "firma_operador", "merma", "total_entregadas", "estado",
		},
		Values: []any{
			int64(in.CantidadPegado), in.TipoPegado, in.CalidadCuadre, in.CalidadDesgarre, in.CalidadMarcas,
			autorizacion, firma, float64(in.Merma), int64(in.TotalEntregadas), estado,
		},
	}
}

func (in PegadoInput) OrderCode() string { return in.NoOrden }

// ArmadoInput captures the assembly stage. Received and delivered quantities
// are the only mandatory stage fields in the whole pipeline.
type ArmadoInput struct {
	CantidadArmado    Count    `json:"cantidad_armado"`
	CantidadEntregado Count    `json:"cantidad_entregado"`
	TotalEntregadas   Count    `json:"total_entregadas"`
	Autorizacion      string   `json:"autorizacion_ac"`
	FirmaOperador     string   `json:"firma_operador"`
	Estado            string   `json:"estado"`
	Merma             Quantity `json:"merma"`
	NoOrden           string   `json:"no_orden"`
}

func (in ArmadoInput) Record() Record {
	total := in.TotalEntregadas
	if total == 0 {
		total = in.CantidadEntregado
	}
	autorizacion := in.Autorizacion
	if autorizacion == "" {
		autorizacion = "no"
	}
	firma := in.FirmaOperador
	if firma == "" {
		firma = "no"
	}
	estado := in.Estado
	if estado == "" {
		estado = "completado"
	}
	return Record{
		Type: StageArmado,
		Columns: []string{
			"cantidad_recibida", "total_entregadas", "autorizacion", "firma_operador", "estado", "merma",
		},
		Values: []any{
			int64(in.CantidadArmado), int64(total), autorizacion, firma, estado, float64(in.Merma),
		},
	}
}

func (in ArmadoInput) OrderCode() string { return in.NoOrden }

// AlmacenInput captures the warehousing stage. Its quantity is the figure the
// reconciliation engine reads as actual production output.
type AlmacenInput struct {
	Cantidad            Count    `json:"cantidad"`
	Tarimas             []string `json:"tarimas"`
	TipoArmado          string   `json:"tipo_armado"`
	AutorizacionAlmacen string   `json:"autorizacion_almacen"`
	NoOrden             string   `json:"no_orden"`
}

func (in AlmacenInput) Record() Record {
	return Record{
		Type:    StageAlmacen,
		Columns: []string{"cantidad", "tarimas", "tipo_armado", "autorizacion_almacen"},
		Values: []any{
			int64(in.Cantidad), strings.Join(in.Tarimas, ", "), in.TipoArmado, in.AutorizacionAlmacen,
		},
	}
}

func (in AlmacenInput) OrderCode() string { return in.NoOrden }

// CalidadInput captures the quality stage.
type CalidadInput struct {
	Certificado                string `json:"certificado"`
	Etiquetas                  string `json:"etiquetas"`
	Revision                   string `json:"revision"`
	AutorizacionCalidad        string `json:"autorizacionCalidad"`
	AutorizacionAdministracion string `json:"autorizacionAdministracion"`
	Estado                     string `json:"estado"`
	NoOrden                    string `json:"no_orden"`
}

func (in CalidadInput) Record() Record {
	return Record{
		Type: StageCalidad,
		Columns: []string{
			"certificado", "etiquetas", "revision", "autorizacion_calidad",
			"autorizacion_administracion", "estado",
		},
		Values: []any{
			in.Certificado, in.Etiquetas, in.Revision, in.AutorizacionCalidad,
			in.AutorizacionAdministracion, in.Estado,
		},
	}
}

func (in CalidadInput) OrderCode() string { return in.NoOrden }

// EnvioInput captures the shipping stage.
type EnvioInput struct {
	Operador      string   `json:"operador"`
	Observaciones string   `json:"observaciones"`
	TotalEnvio    Count    `json:"totalEnvio"`
	Vehiculo      string   `json:"vehiculo"`
	Estado        string   `json:"estado"`
	Merma         Quantity `json:"merma"`
	NoOrden       string   `json:"no_orden"`
}

func (in EnvioInput) Record() Record {
	return Record{
		Type:    StageEnvio,
		Columns: []string{"operador", "observaciones", "total_envio", "vehiculo", "estado", "merma"},
		Values: []any{
			in.Operador, in.Observaciones, int64(in.TotalEnvio), in.Vehiculo, in.Estado, float64(in.Merma),
		},
	}
}

func (in EnvioInput) OrderCode() string { return in.NoOrden }
