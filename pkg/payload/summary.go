package payload

import (
	"fmt"
	"strings"
)

// SummaryText builds the plain-text operator summary the UI copies to the
// clipboard. Absent values fall back to "-".
func SummaryText(values map[string]any) string {
	line := func(label, name string) string {
		value := strings.TrimSpace(stringify(values[name]))
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf("-- %s: %s", label, value)
	}

	title := strings.TrimSpace(stringify(values["nomeDFT"]))
	if title == "" {
		title = "Nome do DFT"
	}

	return strings.Join([]string{
		title,
		"",
		"-- Ambiente: Producao",
		line("Perfil", "perfilOperador"),
		line("Usuario", "loginOperador"),
		line("Tipo de Jornada", "jornada"),
		line("Tipo do Cliente utilizado no teste", "tipoContrato"),
		line("Cliente utilizado no teste", "cpfCliente"),
		line("Caso do Solar", "casoSolar"),
		line("Chamado aberto pela operacao", "chamadoOperador"),
	}, "\n")
}
