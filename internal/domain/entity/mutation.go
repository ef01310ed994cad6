package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind identifica la tabla lógica sobre la que aplica una mutación.
// Conjunto cerrado: el enrutador remoto debe cubrir cada kind.
type EntityKind string

const (
	KindProduct       EntityKind = "product"
	KindMaterial      EntityKind = "material"
	KindTransaction   EntityKind = "transaction"
	KindExpense       EntityKind = "expense"
	KindShift         EntityKind = "shift"
	KindDiscount      EntityKind = "discount"
	KindUser          EntityKind = "user"
	KindBranch        EntityKind = "branch"
	KindRecipe        EntityKind = "recipe"
	KindStockMovement EntityKind = "stock_movement"
)

// AllEntityKinds devuelve el conjunto completo de kinds, en orden estable.
func AllEntityKinds() []EntityKind {
	return []EntityKind{
		KindProduct, KindMaterial, KindTransaction, KindExpense, KindShift,
		KindDiscount, KindUser, KindBranch, KindRecipe, KindStockMovement,
	}
}

// Valid indica si el kind pertenece al conjunto cerrado.
func (k EntityKind) Valid() bool {
	switch k {
	case KindProduct, KindMaterial, KindTransaction, KindExpense, KindShift,
		KindDiscount, KindUser, KindBranch, KindRecipe, KindStockMovement:
		return true
	}
	return false
}

// KindFromTable parsea el nombre de tabla persistido en la cola.
// Un valor desconocido es corrupción de datos, no una variante nueva.
func KindFromTable(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("tabla de mutación desconocida: %q", s)
	}
	return k, nil
}

// OperationKind es el verbo de una mutación encolada.
type OperationKind string

const (
	OpInsert OperationKind = "insert"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// Valid indica si la operación pertenece al conjunto cerrado.
func (o OperationKind) Valid() bool {
	switch o {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// OperationFromString parsea el verbo persistido en la cola.
func OperationFromString(s string) (OperationKind, error) {
	o := OperationKind(s)
	if !o.Valid() {
		return "", fmt.Errorf("operación de mutación desconocida: %q", s)
	}
	return o, nil
}

// MutationRecord es una escritura pendiente de replicar al servicio central.
// Payload viaja opaco: se produce como JSON al encolar y se entrega como JSON
// al reproducir, la cola no lo interpreta. Attempts cuenta los intentos de
// replay solo con fines de observabilidad, nunca condiciona el reintento.
type MutationRecord struct {
	ID        string
	Kind      EntityKind
	Op        OperationKind
	Payload   json.RawMessage
	CreatedAt time.Time
	Attempts  int
}

// Validate verifica que el registro sea reproducible: kind y op dentro del
// conjunto cerrado, ID presente y payload JSON no vacío para insert/update.
func (m *MutationRecord) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mutación sin ID")
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("mutación %s: kind inválido %q", m.ID, m.Kind)
	}
	if !m.Op.Valid() {
		return fmt.Errorf("mutación %s: op inválida %q", m.ID, m.Op)
	}
	if m.Op != OpDelete && len(m.Payload) == 0 {
		return fmt.Errorf("mutación %s: payload vacío para %s", m.ID, m.Op)
	}
	return nil
}
