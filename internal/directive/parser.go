package directive

import (
	"strconv"
	"strings"
)

// Parse scans reply for the first well-formed occurrence of each registry
// kind, in registry order. Matched spans are removed from the returned text;
// a kind appearing more than once keeps its later duplicates untouched
// (first-match-wins, preserved deliberately). Bodies that are delimited but
// fail kind-specific validation come back as Invalid so the dispatcher can
// surface the expected format. An [EVENTO] block missing a required field is
// treated as absent: no partial event is ever surfaced and its markup stays.
func Parse(reply string) (string, []Directive) {
	text := reply
	var out []Directive
	for _, kind := range Registry {
		d, remaining, ok := extract(text, kind)
		if !ok {
			continue
		}
		text = remaining
		out = append(out, d)
	}
	return text, out
}

// extract finds the first span for kind. ok reports whether a directive was
// consumed (and the span removed).
func extract(text string, kind Kind) (Directive, string, bool) {
	open := "[" + string(kind) + "]"
	close := "[/" + string(kind) + "]"

	start := strings.Index(text, open)
	if start < 0 {
		return nil, text, false
	}
	bodyStart := start + len(open)
	rel := strings.Index(text[bodyStart:], close)
	if rel < 0 {
		return nil, text, false
	}
	body := text[bodyStart : bodyStart+rel]
	spanEnd := bodyStart + rel + len(close)

	d, accepted := parseBody(kind, body)
	if !accepted {
		return nil, text, false
	}
	return d, text[:start] + text[spanEnd:], true
}

// parseBody validates a delimited body for its kind. accepted=false means the
// directive is absent and its markup must stay in place (only the partial
// [EVENTO] case); all other malformed bodies become Invalid.
func parseBody(kind Kind, body string) (Directive, bool) {
	trimmed := strings.TrimSpace(body)
	switch kind {
	case KindEvent:
		return parseEvent(body)

	case KindTaskAdd:
		return AddTask{Text: trimmed}, true
	case KindTaskComplete:
		return numeric(kind, trimmed, func(n int) Directive { return CompleteTask{ID: n} })
	case KindTaskDelete:
		return numeric(kind, trimmed, func(n int) Directive { return DeleteTask{ID: n} })
	case KindTaskList:
		return ListTasks{}, true

	case KindNoteAdd:
		return AddNote{Text: trimmed}, true
	case KindNoteList:
		return ListNotes{}, true
	case KindNoteDelete:
		return numeric(kind, trimmed, func(n int) Directive { return DeleteNote{ID: n} })

	case KindWeather:
		return Weather{City: trimmed}, true
	case KindSummary:
		return DailySummary{}, true

	case KindExpenseAdd:
		return parseExpense(kind, trimmed)
	case KindExpenseSummary:
		return ExpenseSummary{}, true
	case KindExpenseAnalysis:
		return ExpenseAnalysis{}, true
	case KindDollar:
		return DollarRate{}, true

	case KindMedAdd:
		return AddMedication{Name: trimmed}, true
	case KindMedDelete:
		return DeleteMedication{Name: trimmed}, true
	case KindMedList:
		return ListMedications{}, true
	case KindMedTaken:
		return MedicationTaken{Period: strings.ToLower(trimmed)}, true

	case KindReminderAdd:
		return parseReminder(kind, trimmed)
	case KindReminderList:
		return ListReminders{}, true
	case KindReminderDelete:
		return numeric(kind, trimmed, func(n int) Directive { return DeleteReminder{ID: n} })

	case KindShoppingAdd:
		return AddShoppingItem{Item: trimmed}, true
	case KindShoppingList:
		return ListShopping{}, true
	case KindShoppingMark:
		return numeric(kind, trimmed, func(n int) Directive { return MarkShoppingItem{ID: n} })
	case KindShoppingDelete:
		return numeric(kind, trimmed, func(n int) Directive { return DeleteShoppingItem{ID: n} })
	case KindShoppingClear:
		return ClearBoughtItems{}, true

	case KindLocation:
		return SetLocation{City: trimmed}, true

	case KindContactPrimary:
		return parsePrimaryContact(kind, trimmed)
	case KindContactAdd:
		if trimmed == "" {
			return Invalid{K: kind, Raw: body, Reason: "empty address"}, true
		}
		return AddSecondaryContact{Address: trimmed}, true
	case KindContactDelete:
		if trimmed == "" {
			return Invalid{K: kind, Raw: body, Reason: "empty address"}, true
		}
		return DeleteContact{Address: trimmed}, true
	case KindMonitoring:
		return parseMonitoring(kind, trimmed)
	}
	return nil, false
}

func numeric(kind Kind, body string, build func(int) Directive) (Directive, bool) {
	n, err := strconv.Atoi(body)
	if err != nil || n < 1 {
		return Invalid{K: kind, Raw: body, Reason: "expected a positive number"}, true
	}
	return build(n), true
}

// parseEvent reads "clave: valor" lines. Keys are matched case-insensitively
// with surrounding whitespace trimmed; titulo, fecha and hora must all be
// present and non-empty or the whole block is treated as absent.
func parseEvent(body string) (Directive, bool) {
	fields := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	ev := CreateEvent{
		Title:    fields["titulo"],
		Date:     fields["fecha"],
		Time:     fields["hora"],
		Duration: fields["duracion"],
	}
	if ev.Title == "" || ev.Date == "" || ev.Time == "" {
		return nil, false
	}
	return ev, true
}

func parseExpense(kind Kind, body string) (Directive, bool) {
	parts := strings.Split(body, "|")
	if len(parts) < 2 {
		return Invalid{K: kind, Raw: body, Reason: "expected monto|descripción|categoría"}, true
	}
	amountRaw := strings.TrimSpace(parts[0])
	amountRaw = strings.ReplaceAll(amountRaw, "$", "")
	amountRaw = strings.ReplaceAll(amountRaw, ",", "")
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil {
		return Invalid{K: kind, Raw: body, Reason: "expected monto|descripción|categoría"}, true
	}
	exp := AddExpense{
		Amount:      amount,
		Description: strings.TrimSpace(parts[1]),
		Category:    "General",
	}
	if len(parts) > 2 {
		if cat := strings.TrimSpace(parts[2]); cat != "" {
			exp.Category = cat
		}
	}
	return exp, true
}

func parseReminder(kind Kind, body string) (Directive, bool) {
	parts := strings.SplitN(body, "|", 2)
	if len(parts) < 2 {
		return Invalid{K: kind, Raw: body, Reason: "expected mensaje|YYYY-MM-DD HH:MM"}, true
	}
	msg := strings.TrimSpace(parts[0])
	at := strings.TrimSpace(parts[1])
	if msg == "" || at == "" {
		return Invalid{K: kind, Raw: body, Reason: "expected mensaje|YYYY-MM-DD HH:MM"}, true
	}
	return AddReminder{Message: msg, At: at}, true
}

func parsePrimaryContact(kind Kind, body string) (Directive, bool) {
	parts := strings.SplitN(body, "|", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return Invalid{K: kind, Raw: body, Reason: "expected nombre|dirección"}, true
	}
	return SetPrimaryContact{
		Name:    strings.TrimSpace(parts[0]),
		Address: strings.TrimSpace(parts[1]),
	}, true
}

func parseMonitoring(kind Kind, body string) (Directive, bool) {
	parts := strings.SplitN(body, "|", 2)
	if len(parts) < 2 {
		return Invalid{K: kind, Raw: body, Reason: "expected función|on|off"}, true
	}
	feature := strings.ToLower(strings.TrimSpace(parts[0]))
	state := strings.ToLower(strings.TrimSpace(parts[1]))
	if state != "on" && state != "off" {
		return Invalid{K: kind, Raw: body, Reason: "expected función|on|off"}, true
	}
	switch feature {
	case "hidratacion", "hidratación", "animo", "ánimo", "actividad":
	default:
		return Invalid{K: kind, Raw: body, Reason: "unknown monitoring feature"}, true
	}
	return SetMonitoring{Feature: normalizeFeature(feature), Enabled: state == "on"}, true
}

func normalizeFeature(feature string) string {
	switch feature {
	case "hidratación":
		return "hidratacion"
	case "ánimo":
		return "animo"
	}
	return feature
}
