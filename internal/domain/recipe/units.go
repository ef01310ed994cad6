package recipe

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Familias de unidades. Stock y receta solo son convertibles dentro de la
// misma familia; la unidad base es g (peso), ml (volumen) o unidad (conteo).
type unitFamily int

const (
	familyUnknown unitFamily = iota
	familyWeight
	familyVolume
	familyCount
)

var unitTable = map[string]struct {
	factor decimal.Decimal
	family unitFamily
}{
	// peso -> gramos
	"mg": {decimal.NewFromFloat(0.001), familyWeight},
	"g":  {decimal.NewFromInt(1), familyWeight},
	"gr": {decimal.NewFromInt(1), familyWeight},
	"kg": {decimal.NewFromInt(1000), familyWeight},
	// volumen -> mililitros
	"ml": {decimal.NewFromInt(1), familyVolume},
	"cl": {decimal.NewFromInt(10), familyVolume},
	"l":  {decimal.NewFromInt(1000), familyVolume},
	"lt": {decimal.NewFromInt(1000), familyVolume},
	// conteo -> unidades
	"unidad":  {decimal.NewFromInt(1), familyCount},
	"und":     {decimal.NewFromInt(1), familyCount},
	"u":       {decimal.NewFromInt(1), familyCount},
	"pcs":     {decimal.NewFromInt(1), familyCount},
	"pieza":   {decimal.NewFromInt(1), familyCount},
	"porcion": {decimal.NewFromInt(1), familyCount},
	"docena":  {decimal.NewFromInt(12), familyCount},
}

// unitFactor devuelve el factor a la unidad base y la familia de una unidad.
// Unidades no reconocidas quedan en familyUnknown con factor 1.
func unitFactor(unit string) (decimal.Decimal, unitFamily) {
	key := strings.ToLower(strings.TrimSpace(unit))
	if e, ok := unitTable[key]; ok {
		return e.factor, e.family
	}
	return decimal.NewFromInt(1), familyUnknown
}

// sameUnitText compara unidades como texto (case-insensitive, sin espacios).
// Dos unidades no reconocidas pero textualmente iguales cuentan como la misma.
func sameUnitText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// normalizePair lleva stock y necesidad a una escala comparable.
// Misma familia: ambos a la unidad base. Familias distintas o unidades
// desconocidas y textualmente diferentes: se devuelven tal cual y ok=false
// para que el caller reporte la discrepancia (la división se hace igual).
func normalizePair(stock decimal.Decimal, stockUnit string, need decimal.Decimal, needUnit string) (s, n decimal.Decimal, ok bool) {
	sf, sfam := unitFactor(stockUnit)
	nf, nfam := unitFactor(needUnit)
	if sfam != familyUnknown && sfam == nfam {
		return stock.Mul(sf), need.Mul(nf), true
	}
	if sameUnitText(stockUnit, needUnit) {
		return stock, need, true
	}
	return stock, need, false
}
