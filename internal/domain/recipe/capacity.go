package recipe

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// UnitMismatch reporta un ingrediente cuya unidad de receta no pudo
// reconciliarse con la unidad de stock del insumo. La porción se calculó
// igualmente por división directa, así que el resultado es aproximado.
type UnitMismatch struct {
	MaterialID string
	StockUnit  string
	NeededUnit string
}

// MaxServings calcula cuántas porciones de la receta permite el stock actual.
//
//	-1 : receta sin ingredientes (capacidad no acotada por insumos)
//	 0 : algún insumo no existe o está agotado
//	 n : mínimo sobre ingredientes de floor(stock normalizado / necesidad)
//
// Función pura: sin I/O ni logging. Las discrepancias de unidad salen como
// datos para que el caller decida cómo exponerlas.
func MaxServings(rec *entity.Recipe, materials []*entity.Material) (int, []UnitMismatch) {
	if rec == nil || len(rec.Ingredients) == 0 {
		return -1, nil
	}

	byID := make(map[string]*entity.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	min := -1
	var mismatches []UnitMismatch
	for _, ing := range rec.Ingredients {
		mat, ok := byID[ing.MaterialID]
		if !ok || mat.Stock.LessThanOrEqual(decimal.Zero) {
			return 0, mismatches
		}
		// Una línea sin cantidad no restringe la capacidad
		if ing.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}

		stock, need, matched := normalizePair(mat.Stock, mat.Unit, ing.Quantity, ing.Unit)
		if !matched {
			mismatches = append(mismatches, UnitMismatch{
				MaterialID: ing.MaterialID,
				StockUnit:  mat.Unit,
				NeededUnit: ing.Unit,
			})
		}

		servings := floorDiv(stock, need)
		if min == -1 || servings < min {
			min = servings
		}
	}

	if min == -1 {
		return -1, mismatches
	}
	return min, mismatches
}

// floorDiv divide con piso exacto usando el cociente entero de QuoRem,
// evitando el redondeo a precisión fija de Div (1000/3 debe dar 333, no 334).
func floorDiv(stock, need decimal.Decimal) int {
	q, _ := stock.QuoRem(need, 0)
	return int(q.IntPart())
}
