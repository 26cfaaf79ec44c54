package dto

// Topes de paginación de los listados.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageRequest limit/offset de la query. Cero en limit significa "usar DefaultLimit".
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// WithDefaults completa el límite ausente.
func (p PageRequest) WithDefaults() PageRequest {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// Response metadatos de la página servida.
func (p PageRequest) Response() PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset}
}

type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: code es estable (VALIDATION, NOT_FOUND, REFERENCED...), message legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
