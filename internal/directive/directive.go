// Package directive extracts structured action directives from free-text
// model replies. Each directive kind is delimited by a fixed [TAG]...[/TAG]
// pair; the parser yields a typed value per kind and the reply text with the
// matched spans removed.
package directive

// Kind identifies a directive tag. The string value is the wire tag name.
type Kind string

const (
	KindEvent           Kind = "EVENTO"
	KindTaskAdd         Kind = "TAREA_AGREGAR"
	KindTaskComplete    Kind = "TAREA_COMPLETAR"
	KindTaskDelete      Kind = "TAREA_ELIMINAR"
	KindTaskList        Kind = "TAREAS_LISTAR"
	KindNoteAdd         Kind = "NOTA_AGREGAR"
	KindNoteList        Kind = "NOTAS_LISTAR"
	KindNoteDelete      Kind = "NOTA_ELIMINAR"
	KindWeather         Kind = "CLIMA"
	KindSummary         Kind = "RESUMEN"
	KindExpenseAdd      Kind = "GASTO_AGREGAR"
	KindExpenseSummary  Kind = "GASTOS_RESUMEN"
	KindExpenseAnalysis Kind = "GASTOS_ANALISIS"
	KindDollar          Kind = "DOLAR"
	KindMedAdd          Kind = "MED_AGREGAR"
	KindMedDelete       Kind = "MED_ELIMINAR"
	KindMedList         Kind = "MED_LISTAR"
	KindMedTaken        Kind = "MED_TOMADO"
	KindReminderAdd     Kind = "RECORDATORIO"
	KindReminderList    Kind = "RECORDATORIOS_LISTAR"
	KindReminderDelete  Kind = "RECORDATORIO_ELIMINAR"
	KindShoppingAdd     Kind = "COMPRA_AGREGAR"
	KindShoppingList    Kind = "COMPRAS_LISTAR"
	KindShoppingMark    Kind = "COMPRA_MARCAR"
	KindShoppingDelete  Kind = "COMPRA_ELIMINAR"
	KindShoppingClear   Kind = "COMPRAS_LIMPIAR"
	KindLocation        Kind = "UBICACION"
	KindContactPrimary  Kind = "CONTACTO_PRIMARIO"
	KindContactAdd      Kind = "CONTACTO_AGREGAR"
	KindContactDelete   Kind = "CONTACTO_ELIMINAR"
	KindMonitoring      Kind = "MONITOREO"
)

// Registry is the fixed set of known kinds in declaration order. Dispatch
// follows this order, not the order tags appear in the reply, so independent
// handlers compose predictably without re-parsing.
var Registry = []Kind{
	KindEvent,
	KindTaskAdd,
	KindTaskComplete,
	KindTaskDelete,
	KindTaskList,
	KindNoteAdd,
	KindNoteList,
	KindNoteDelete,
	KindWeather,
	KindSummary,
	KindExpenseAdd,
	KindExpenseSummary,
	KindExpenseAnalysis,
	KindDollar,
	KindMedAdd,
	KindMedDelete,
	KindMedList,
	KindMedTaken,
	KindReminderAdd,
	KindReminderList,
	KindReminderDelete,
	KindShoppingAdd,
	KindShoppingList,
	KindShoppingMark,
	KindShoppingDelete,
	KindShoppingClear,
	KindLocation,
	KindContactPrimary,
	KindContactAdd,
	KindContactDelete,
	KindMonitoring,
}

// Directive is the tagged union of parsed directive values.
type Directive interface {
	Kind() Kind
}

// Invalid marks a delimited body that failed kind-specific validation. The
// span is still removed from the text; the dispatcher reports the expected
// format to the user.
type Invalid struct {
	K      Kind
	Raw    string
	Reason string
}

func (d Invalid) Kind() Kind { return d.K }

// CreateEvent carries the calendar event fields as written; date/time
// validation happens at dispatch so the user sees a failure line instead of
// the directive silently vanishing.
type CreateEvent struct {
	Title    string
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Duration string // minutes, empty means default
}

func (d CreateEvent) Kind() Kind { return KindEvent }

type AddTask struct{ Text string }

func (d AddTask) Kind() Kind { return KindTaskAdd }

type CompleteTask struct{ ID int }

func (d CompleteTask) Kind() Kind { return KindTaskComplete }

type DeleteTask struct{ ID int }

func (d DeleteTask) Kind() Kind { return KindTaskDelete }

type ListTasks struct{}

func (d ListTasks) Kind() Kind { return KindTaskList }

type AddNote struct{ Text string }

func (d AddNote) Kind() Kind { return KindNoteAdd }

type ListNotes struct{}

func (d ListNotes) Kind() Kind { return KindNoteList }

type DeleteNote struct{ ID int }

func (d DeleteNote) Kind() Kind { return KindNoteDelete }

// Weather queries the forecast; City empty means the subject's saved location.
type Weather struct{ City string }

func (d Weather) Kind() Kind { return KindWeather }

type DailySummary struct{}

func (d DailySummary) Kind() Kind { return KindSummary }

type AddExpense struct {
	Amount      float64
	Description string
	Category    string
}

func (d AddExpense) Kind() Kind { return KindExpenseAdd }

type ExpenseSummary struct{}

func (d ExpenseSummary) Kind() Kind { return KindExpenseSummary }

type ExpenseAnalysis struct{}

func (d ExpenseAnalysis) Kind() Kind { return KindExpenseAnalysis }

type DollarRate struct{}

func (d DollarRate) Kind() Kind { return KindDollar }

type AddMedication struct{ Name string }

func (d AddMedication) Kind() Kind { return KindMedAdd }

type DeleteMedication struct{ Name string }

func (d DeleteMedication) Kind() Kind { return KindMedDelete }

type ListMedications struct{}

func (d ListMedications) Kind() Kind { return KindMedList }

// MedicationTaken records an intake. Period is "mañana" or "noche"; anything
// else is kept verbatim and the dispatcher infers the period from the clock.
type MedicationTaken struct{ Period string }

func (d MedicationTaken) Kind() Kind { return KindMedTaken }

type AddReminder struct {
	Message string
	At      string // YYYY-MM-DD HH:MM local
}

func (d AddReminder) Kind() Kind { return KindReminderAdd }

type ListReminders struct{}

func (d ListReminders) Kind() Kind { return KindReminderList }

type DeleteReminder struct{ ID int }

func (d DeleteReminder) Kind() Kind { return KindReminderDelete }

type AddShoppingItem struct{ Item string }

func (d AddShoppingItem) Kind() Kind { return KindShoppingAdd }

type ListShopping struct{}

func (d ListShopping) Kind() Kind { return KindShoppingList }

type MarkShoppingItem struct{ ID int }

func (d MarkShoppingItem) Kind() Kind { return KindShoppingMark }

type DeleteShoppingItem struct{ ID int }

func (d DeleteShoppingItem) Kind() Kind { return KindShoppingDelete }

type ClearBoughtItems struct{}

func (d ClearBoughtItems) Kind() Kind { return KindShoppingClear }

type SetLocation struct{ City string }

func (d SetLocation) Kind() Kind { return KindLocation }

// SetPrimaryContact registers or replaces the subject's primary caregiver.
type SetPrimaryContact struct {
	Name    string
	Address string
}

func (d SetPrimaryContact) Kind() Kind { return KindContactPrimary }

type AddSecondaryContact struct{ Address string }

func (d AddSecondaryContact) Kind() Kind { return KindContactAdd }

type DeleteContact struct{ Address string }

func (d DeleteContact) Kind() Kind { return KindContactDelete }

// SetMonitoring toggles a monitoring feature for the subject.
// Feature is one of "hidratacion", "animo", "actividad".
type SetMonitoring struct {
	Feature string
	Enabled bool
}

func (d SetMonitoring) Kind() Kind { return KindMonitoring }
