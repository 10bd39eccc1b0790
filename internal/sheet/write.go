package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"burnline/internal/domain"
)

// Write renders events back into worksheet text with canonical headers.
// Because cells are comma-split with no quoting, embedded commas in free
// text are replaced with semicolons.
func Write(schema domain.Schema, events []domain.Event) string {
	var b strings.Builder
	if schema == domain.SchemaActivity {
		b.WriteString("Data,Atividade,Descrição,Fase,Responsável,Status,Início,Fim,Duração,Registrado\n")
		for _, ev := range events {
			a, ok := ev.(domain.ActivityEvent)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s,%s,%s,%d,%s,%s,%s,%s,%s,%s\n",
				a.Date, clean(a.Activity), clean(a.Description), a.Phase,
				clean(a.Responsible), statusCell(a.Status), a.Start, a.End,
				strconv.FormatFloat(a.Hours, 'f', -1, 64), a.LoggedAt)
		}
		return b.String()
	}

	b.WriteString("Data,Tipo,Completados,Adicionados,Fase,Descrição\n")
	for _, ev := range events {
		c, ok := ev.(domain.CounterEvent)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s,%s,%d,%d,%d,%s\n",
			c.Date, kindCell(c.Kind), c.Completed, c.Added, c.Phase, clean(c.Description))
	}
	return b.String()
}

func clean(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}

func kindCell(k domain.Kind) string {
	switch k {
	case domain.KindInitial:
		return "inicial"
	case domain.KindAdded:
		return "adicionado"
	default:
		return "completado"
	}
}

func statusCell(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return "Concluído"
	case domain.StatusInProgress:
		return "Em andamento"
	case domain.StatusCancelled:
		return "Cancelado"
	default:
		return "Pendente"
	}
}
