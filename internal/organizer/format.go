package organizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

// The formatters render WhatsApp-flavored Spanish text. Output wording is a
// user-facing contract; changing it breaks conversations mid-flight, so keep
// edits additive.

func (s *Service) FormatTasks(ctx context.Context, subjectID string) (string, error) {
	tasks, err := s.PendingTasks(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No tienes tareas pendientes.", nil
	}
	var b strings.Builder
	b.WriteString("📋 *Tus tareas pendientes:*\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", t.ID, t.Text)
	}
	return b.String(), nil
}

func (s *Service) FormatNotes(ctx context.Context, subjectID string) (string, error) {
	notes, err := s.Notes(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "No tienes notas guardadas.", nil
	}
	var b strings.Builder
	b.WriteString("📝 *Tus notas:*\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "%d. %s _(%s)_\n", n.ID, n.Text, n.Created.Format("2006-01-02 15:04"))
	}
	return b.String(), nil
}

func (s *Service) FormatShoppingList(ctx context.Context, subjectID string) (string, error) {
	items, err := s.ShoppingList(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "🛒 Tu lista de compras está vacía.", nil
	}
	var pending, bought []ShoppingItem
	for _, it := range items {
		if it.Bought {
			bought = append(bought, it)
		} else {
			pending = append(pending, it)
		}
	}
	var b strings.Builder
	b.WriteString("🛒 *Lista de compras:*\n")
	if len(pending) > 0 {
		b.WriteString("\n*Pendientes:*\n")
		for _, it := range pending {
			fmt.Fprintf(&b, "  %d. %s\n", it.ID, it.Item)
		}
	}
	if len(bought) > 0 {
		b.WriteString("\n*Comprados:* ✓\n")
		for _, it := range bought {
			fmt.Fprintf(&b, "  ~%s~\n", it.Item)
		}
	}
	return b.String(), nil
}

// ExpensesSummary reports the last 30 days: total, per-category breakdown
// sorted by amount, and the five most recent entries.
func (s *Service) ExpensesSummary(ctx context.Context, subjectID string) (string, error) {
	all, err := s.expenses.List(ctx, subjectID)
	if err != nil {
		return "", err
	}
	cutoff := requestcontext.Now(ctx).AddDate(0, 0, -30)
	var recent []Expense
	for _, e := range all {
		if !e.Date.Before(cutoff) {
			recent = append(recent, e)
		}
	}
	if len(recent) == 0 {
		return "No tienes gastos registrados en los últimos 30 días.", nil
	}

	var total float64
	byCategory := map[string]float64{}
	for _, e := range recent {
		total += e.Amount
		byCategory[e.Category] += e.Amount
	}

	var b strings.Builder
	b.WriteString("💰 *Gastos del mes:*\n")
	fmt.Fprintf(&b, "📊 Total: $%s\n\n", FormatAmount(total))
	b.WriteString("*Por categoría:*\n")
	for _, c := range sortedCategories(byCategory) {
		fmt.Fprintf(&b, "  • %s: $%s\n", c, FormatAmount(byCategory[c]))
	}
	b.WriteString("\n*Últimos gastos:*\n")
	start := len(recent) - 5
	if start < 0 {
		start = 0
	}
	for _, e := range recent[start:] {
		fmt.Fprintf(&b, "  • $%s - %s\n", FormatAmount(e.Amount), e.Description)
	}
	return b.String(), nil
}

// ExpenseAnalysis compares the current month against the previous one and the
// running week, then breaks the month down by category.
func (s *Service) ExpenseAnalysis(ctx context.Context, subjectID string) (string, error) {
	all, err := s.expenses.List(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "📊 No tienes gastos registrados para analizar.", nil
	}

	now := requestcontext.Now(ctx)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	weekStart := startOfWeek(now)

	var totalMonth, totalLastMonth, totalWeek float64
	byCategory := map[string]float64{}
	for _, e := range all {
		switch {
		case !e.Date.Before(monthStart):
			totalMonth += e.Amount
			byCategory[e.Category] += e.Amount
		case !e.Date.Before(lastMonthStart):
			totalLastMonth += e.Amount
		}
		if !e.Date.Before(weekStart) {
			totalWeek += e.Amount
		}
	}

	var b strings.Builder
	b.WriteString("📊 *Análisis de gastos:*\n\n")
	fmt.Fprintf(&b, "💰 *Esta semana:* $%s\n", FormatAmount(totalWeek))
	fmt.Fprintf(&b, "💰 *Este mes:* $%s\n", FormatAmount(totalMonth))

	if totalLastMonth > 0 {
		diff := totalMonth - totalLastMonth
		percent := diff / totalLastMonth * 100
		switch {
		case diff > 0:
			fmt.Fprintf(&b, "📈 Gastaste $%s más que el mes pasado (+%.0f%%)\n", FormatAmount(diff), percent)
		case diff < 0:
			fmt.Fprintf(&b, "📉 Gastaste $%s menos que el mes pasado (%.0f%%)\n", FormatAmount(-diff), percent)
		default:
			b.WriteString("📊 Igual que el mes pasado\n")
		}
	}

	if len(byCategory) > 0 {
		cats := sortedCategories(byCategory)
		top := cats[0]
		fmt.Fprintf(&b, "\n🏷 *Mayor gasto:* %s ($%s)\n", top, FormatAmount(byCategory[top]))
		b.WriteString("\n*Por categoría este mes:*\n")
		for _, c := range cats {
			percent := 0.0
			if totalMonth > 0 {
				percent = byCategory[c] / totalMonth * 100
			}
			fmt.Fprintf(&b, "  • %s: $%s (%.0f%%)\n", c, FormatAmount(byCategory[c]), percent)
		}
		dailyAvg := totalMonth / float64(now.Day())
		fmt.Fprintf(&b, "\n📅 *Promedio diario:* $%s", FormatAmount(dailyAvg))
	}
	return b.String(), nil
}

// startOfWeek truncates to Monday 00:00 in the time's own location.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// FormatAmount renders a whole-peso amount with thousands separators,
// e.g. 15230.4 -> "15,230".
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func sortedCategories(byCategory map[string]float64) []string {
	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if byCategory[cats[i]] != byCategory[cats[j]] {
			return byCategory[cats[i]] > byCategory[cats[j]]
		}
		return cats[i] < cats[j]
	})
	return cats
}
