package dto

// ErrorResponse respuesta estándar de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details valores accionables (requerido/disponible, estado actual) para
	// que la UI arme el mensaje sin re-consultar.
	Details map[string]string `json:"details,omitempty"`
}
