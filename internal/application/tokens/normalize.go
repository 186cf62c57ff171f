package tokens

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCode canonicaliza un código de token para el match tolerante:
// normaliza Unicode NFKC (los lectores QR de algunos dispositivos emiten
// variantes de ancho completo), elimina todo espacio en blanco y pasa a
// mayúsculas. Se usa como fallback cuando el match exacto falla.
func NormalizeCode(code string) string {
	folded := norm.NFKC.String(code)
	folded = strings.Join(strings.Fields(folded), "")
	return strings.ToUpper(folded)
}
