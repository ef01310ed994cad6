package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeletePayload es el payload mínimo de una mutación delete: solo el id de
// la entidad, suficiente para componer la ruta remota.
type DeletePayload struct {
	ID string `json:"id"`
}
