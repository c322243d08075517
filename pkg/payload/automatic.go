package payload

import (
	"strconv"
	"time"
)

// Month names in pt-BR, matching the locale of the generated documents.
var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// AutomaticValues returns the fields filled in by the system rather than the
// user: the capitalized current month, the year, and the formatted date.
// They are merged over the user values so templates can always rely on them.
func AutomaticValues(now time.Time) map[string]string {
	return map[string]string{
		"mesAtual": monthNames[now.Month()-1],
		"anoAtual": strconv.Itoa(now.Year()),
		"data":     now.Format("02/01/2006"),
	}
}
