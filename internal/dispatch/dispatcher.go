// Package dispatch executes parsed reply directives against the domain
// services and appends one visible result line per directive. Execution
// follows the registry declaration order regardless of where tags appeared in
// the reply, and every branch degrades to a user-readable line rather than
// swallowing the action silently.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/directive"
	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/organizer"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/internal/reminder"
	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
)

const actionFailedLine = "❌ No pude completar esa acción. Intentá de nuevo en un rato."

// Organizer is the slice of the organizer service the dispatcher drives.
type Organizer interface {
	AddTask(ctx context.Context, subjectID, text string) (organizer.Task, error)
	CompleteTask(ctx context.Context, subjectID string, id int) error
	DeleteTask(ctx context.Context, subjectID string, id int) error
	FormatTasks(ctx context.Context, subjectID string) (string, error)
	AddNote(ctx context.Context, subjectID, text string) (organizer.Note, error)
	DeleteNote(ctx context.Context, subjectID string, id int) error
	FormatNotes(ctx context.Context, subjectID string) (string, error)
	AddShoppingItem(ctx context.Context, subjectID, item string) (organizer.ShoppingItem, error)
	MarkItemBought(ctx context.Context, subjectID string, id int) error
	DeleteShoppingItem(ctx context.Context, subjectID string, id int) error
	ClearBoughtItems(ctx context.Context, subjectID string) error
	FormatShoppingList(ctx context.Context, subjectID string) (string, error)
	AddExpense(ctx context.Context, subjectID string, amount float64, description, category string) (organizer.Expense, error)
	ExpensesSummary(ctx context.Context, subjectID string) (string, error)
	ExpenseAnalysis(ctx context.Context, subjectID string) (string, error)
	Location(ctx context.Context, subjectID string) (string, error)
	SetLocation(ctx context.Context, subjectID, city string) error
}

// Medications covers the medication list operations reachable by directive.
type Medications interface {
	Add(ctx context.Context, subjectID, name string) error
	Remove(ctx context.Context, subjectID, name string) error
	LogTaken(ctx context.Context, subjectID string, period medication.Period) error
	Format(ctx context.Context, subjectID string) (string, error)
}

// Reminders covers the one-shot reminder operations reachable by directive.
type Reminders interface {
	Add(ctx context.Context, subjectID, message, fireAt string) (reminder.Reminder, error)
	Delete(ctx context.Context, subjectID string, id int) error
	Format(ctx context.Context, subjectID string) (string, error)
}

// Calendar schedules events from wire-format date fields.
type Calendar interface {
	Create(ctx context.Context, subjectID, title, date, clock string, durationMinutes int) (calendar.Event, error)
}

// Contacts manages the caregiver chain and monitoring features.
type Contacts interface {
	SetPrimaryContact(ctx context.Context, subjectAddress, name, contactAddress string) error
	AddSecondaryContact(ctx context.Context, subjectAddress, contactAddress string) error
	DeleteContact(ctx context.Context, subjectAddress, contactAddress string) error
	SetFeature(ctx context.Context, address, feature string, enabled bool) error
}

// WeatherFeed reports current conditions for a city.
type WeatherFeed interface {
	Current(ctx context.Context, city string) (string, error)
}

// DollarFeed reports exchange quotes.
type DollarFeed interface {
	Quotes(ctx context.Context) (string, error)
}

// Summarizer renders the daily digest.
type Summarizer interface {
	Daily(ctx context.Context, subjectID string) (string, error)
}

type Dispatcher struct {
	organizer Organizer
	meds      Medications
	reminders Reminders
	calendar  Calendar
	contacts  Contacts
	weather   WeatherFeed
	dollar    DollarFeed
	summary   Summarizer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(org Organizer, meds Medications, reminders Reminders, cal Calendar, contacts Contacts, weather WeatherFeed, dollar DollarFeed, summary Summarizer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		organizer: org,
		meds:      meds,
		reminders: reminders,
		calendar:  cal,
		contacts:  contacts,
		weather:   weather,
		dollar:    dollar,
		summary:   summary,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses reply, runs each directive at most once and returns the
// cleaned text with one result line appended per directive, separated by
// blank lines.
func (d *Dispatcher) Dispatch(ctx context.Context, subjectID, reply string) string {
	cleaned, directives := directive.Parse(reply)
	out := cleaned
	for _, dir := range directives {
		line, err := d.execute(ctx, subjectID, dir)
		kind := string(dir.Kind())
		if err != nil {
			if expected(err) {
				d.logger.WarnContext(ctx, "directive rejected", "kind", kind, "error", err)
			} else {
				d.logger.ErrorContext(ctx, "directive failed", "kind", kind, "error", err)
			}
			if line == "" {
				line = actionFailedLine
			}
			if d.metrics != nil {
				d.metrics.IncDirective(kind, "error")
			}
		} else if d.metrics != nil {
			d.metrics.IncDirective(kind, "ok")
		}
		if line != "" {
			out += "\n\n" + line
		}
	}
	return strings.TrimSpace(out)
}

// expected reports whether err is a user-facing rejection rather than an
// infrastructure failure.
func expected(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound) ||
		dErrors.HasCode(err, dErrors.CodeConflict) ||
		dErrors.HasCode(err, dErrors.CodeInvalidInput)
}

// execute runs one directive. A non-empty line with a non-nil error means
// the failure already has its user-visible wording.
func (d *Dispatcher) execute(ctx context.Context, subjectID string, dir directive.Directive) (string, error) {
	switch v := dir.(type) {
	case directive.Invalid:
		return invalidLine(v), dErrors.New(dErrors.CodeInvalidInput, v.Reason)

	case directive.CreateEvent:
		duration := 0
		if v.Duration != "" {
			duration, _ = strconv.Atoi(v.Duration)
		}
		ev, err := d.calendar.Create(ctx, subjectID, v.Title, v.Date, v.Time, duration)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
				return "❌ No pude crear el evento. Verificá la fecha (YYYY-MM-DD) y la hora (HH:MM).", err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Evento '%s' creado para %s a las %s", ev.Title, v.Date, v.Time), nil

	case directive.AddTask:
		task, err := d.organizer.AddTask(ctx, subjectID, v.Text)
		if err != nil {
			return "", err
		}
		return "✅ Tarea agregada: " + task.Text, nil
	case directive.CompleteTask:
		if err := d.organizer.CompleteTask(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré la tarea %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Tarea %d completada", v.ID), nil
	case directive.DeleteTask:
		if err := d.organizer.DeleteTask(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré la tarea %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Tarea %d eliminada", v.ID), nil
	case directive.ListTasks:
		return d.organizer.FormatTasks(ctx, subjectID)

	case directive.AddNote:
		note, err := d.organizer.AddNote(ctx, subjectID, v.Text)
		if err != nil {
			return "", err
		}
		return "✅ Nota guardada: " + note.Text, nil
	case directive.ListNotes:
		return d.organizer.FormatNotes(ctx, subjectID)
	case directive.DeleteNote:
		if err := d.organizer.DeleteNote(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré la nota %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Nota %d eliminada", v.ID), nil

	case directive.Weather:
		city := v.City
		if city == "" {
			saved, err := d.organizer.Location(ctx, subjectID)
			if err != nil {
				return "", err
			}
			city = saved
		}
		block, err := d.weather.Current(ctx, city)
		if err != nil {
			// the client already degraded to its apology line
			d.logger.WarnContext(ctx, "weather feed unavailable", "error", err)
		}
		return block, nil
	case directive.DailySummary:
		return d.summary.Daily(ctx, subjectID)

	case directive.AddExpense:
		exp, err := d.organizer.AddExpense(ctx, subjectID, v.Amount, v.Description, v.Category)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Gasto registrado: $%s - %s (%s)",
			organizer.FormatAmount(exp.Amount), exp.Description, exp.Category), nil
	case directive.ExpenseSummary:
		return d.organizer.ExpensesSummary(ctx, subjectID)
	case directive.ExpenseAnalysis:
		return d.organizer.ExpenseAnalysis(ctx, subjectID)

	case directive.DollarRate:
		block, err := d.dollar.Quotes(ctx)
		if err != nil {
			d.logger.WarnContext(ctx, "dollar feed unavailable", "error", err)
		}
		return block, nil

	case directive.AddMedication:
		if err := d.meds.Add(ctx, subjectID, v.Name); err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				return fmt.Sprintf("⚠️ El medicamento '%s' ya está en tu lista.", v.Name), err
			}
			return "", err
		}
		return "✅ Medicamento agregado: " + v.Name, nil
	case directive.DeleteMedication:
		if err := d.meds.Remove(ctx, subjectID, v.Name); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré el medicamento '%s' en tu lista.", v.Name), err
			}
			return "", err
		}
		return "✅ Medicamento eliminado: " + v.Name, nil
	case directive.ListMedications:
		return d.meds.Format(ctx, subjectID)
	case directive.MedicationTaken:
		period := medication.ParsePeriod(ctx, v.Period)
		if err := d.meds.LogTaken(ctx, subjectID, period); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Registrado: medicamentos de la %s tomados. ¡Bien hecho! 💪", period), nil

	case directive.AddReminder:
		added, err := d.reminders.Add(ctx, subjectID, v.Message, v.At)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
				return "❌ No pude crear el recordatorio. Formato: mensaje|YYYY-MM-DD HH:MM", err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Recordatorio creado: '%s' para el %s",
			added.Message, added.FireAt.Format("02/01/2006 a las 15:04")), nil
	case directive.ListReminders:
		return d.reminders.Format(ctx, subjectID)
	case directive.DeleteReminder:
		if err := d.reminders.Delete(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré el recordatorio %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Recordatorio %d eliminado", v.ID), nil

	case directive.AddShoppingItem:
		item, err := d.organizer.AddShoppingItem(ctx, subjectID, v.Item)
		if err != nil {
			return "", err
		}
		return "✅ Agregado a la lista: " + item.Item, nil
	case directive.ListShopping:
		return d.organizer.FormatShoppingList(ctx, subjectID)
	case directive.MarkShoppingItem:
		if err := d.organizer.MarkItemBought(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré el item %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Item %d marcado como comprado", v.ID), nil
	case directive.DeleteShoppingItem:
		if err := d.organizer.DeleteShoppingItem(ctx, subjectID, v.ID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return fmt.Sprintf("❌ No encontré el item %d", v.ID), err
			}
			return "", err
		}
		return fmt.Sprintf("✅ Item %d eliminado de la lista", v.ID), nil
	case directive.ClearBoughtItems:
		if err := d.organizer.ClearBoughtItems(ctx, subjectID); err != nil {
			return "", err
		}
		return "✅ Items comprados eliminados de la lista", nil

	case directive.SetLocation:
		if err := d.organizer.SetLocation(ctx, subjectID, v.City); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Ubicación guardada: %s. El clima ahora será de esta ciudad.", v.City), nil

	case directive.SetPrimaryContact:
		if err := d.contacts.SetPrimaryContact(ctx, subjectID, v.Name, v.Address); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Contacto principal guardado: %s (%s)", v.Name, v.Address), nil
	case directive.AddSecondaryContact:
		if err := d.contacts.AddSecondaryContact(ctx, subjectID, v.Address); err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				return "⚠️ Ese contacto ya está en tu lista.", err
			}
			return "", err
		}
		return "✅ Contacto agregado: " + v.Address, nil
	case directive.DeleteContact:
		if err := d.contacts.DeleteContact(ctx, subjectID, v.Address); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return "❌ No encontré ese contacto.", err
			}
			return "", err
		}
		return "✅ Contacto eliminado: " + v.Address, nil

	case directive.SetMonitoring:
		if err := d.contacts.SetFeature(ctx, subjectID, v.Feature, v.Enabled); err != nil {
			return "", err
		}
		verb := "desactivado"
		if v.Enabled {
			verb = "activado"
		}
		return fmt.Sprintf("✅ Seguimiento de %s %s.", featureLabel(v.Feature), verb), nil
	}

	return "", dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unhandled directive %s", dir.Kind()))
}

// invalidLine maps a malformed body to the expected-format hint the original
// bot shows for that tag family.
func invalidLine(v directive.Invalid) string {
	switch v.K {
	case directive.KindTaskComplete, directive.KindTaskDelete:
		return "❌ Formato incorrecto. Usa un número de tarea."
	case directive.KindNoteDelete:
		return "❌ Formato incorrecto. Usa un número de nota."
	case directive.KindReminderDelete:
		return "❌ Formato incorrecto. Usa un número de recordatorio."
	case directive.KindShoppingMark, directive.KindShoppingDelete:
		return "❌ Formato incorrecto. Usa un número de item."
	case directive.KindExpenseAdd:
		if strings.Contains(v.Raw, "|") {
			return "❌ No pude registrar el gasto. Formato: monto|descripción|categoría"
		}
		return "❌ Formato incorrecto. Usa: monto|descripción|categoría"
	case directive.KindReminderAdd:
		return "❌ Formato incorrecto. Usa: mensaje|YYYY-MM-DD HH:MM"
	case directive.KindContactPrimary:
		return "❌ Formato incorrecto. Usa: nombre|número"
	case directive.KindContactAdd, directive.KindContactDelete:
		return "❌ Falta el número del contacto."
	case directive.KindMonitoring:
		return "❌ Formato incorrecto. Usa: función|on u off"
	}
	return actionFailedLine
}

func featureLabel(feature string) string {
	switch feature {
	case "hidratacion":
		return "hidratación"
	case "animo":
		return "ánimo"
	}
	return feature
}
