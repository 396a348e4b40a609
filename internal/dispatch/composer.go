package dispatch

import (
	"context"
	"fmt"

	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
)

const (
	wellnessNoticeText = "😊 *¿Cómo estás hoy?*\n\nContame cómo te sentís. Con una palabra alcanza: bien, mal, regular, contento, cansado..."

	wellnessReminderText = "😊 *Segundo aviso*\n\nTodavía no me contaste cómo estás hoy. Una palabra alcanza: bien, mal, regular..."
)

// MedicationLister reads the subject's registered medication names.
type MedicationLister interface {
	List(ctx context.Context, subjectID string) ([]string, error)
}

// CareComposer renders the outbound texts for obligation instances. The
// medication wording reuses the same reminder block the list commands show,
// so the subject always sees their own medication names.
type CareComposer struct {
	meds MedicationLister
}

func NewCareComposer(meds MedicationLister) *CareComposer {
	return &CareComposer{meds: meds}
}

func (c *CareComposer) NoticeText(ctx context.Context, inst obligation.Instance) (string, error) {
	switch inst.Kind {
	case obligation.KindMedication:
		names, err := c.meds.List(ctx, inst.SubjectID)
		if err != nil {
			return "", err
		}
		return medication.ReminderText(medication.Period(inst.PeriodKey.Qualifier()), names), nil
	case obligation.KindWellness:
		return wellnessNoticeText, nil
	}
	return "", dErrors.New(dErrors.CodeInternal, fmt.Sprintf("no notice wording for kind %s", inst.Kind))
}

func (c *CareComposer) ReminderText(ctx context.Context, inst obligation.Instance) (string, error) {
	switch inst.Kind {
	case obligation.KindMedication:
		period := inst.PeriodKey.Qualifier()
		return fmt.Sprintf("💊 *Segundo aviso*\n\nTodavía no me confirmaste tus medicamentos de la %s. ¿Los tomaste? Responde 'ya tomé' así sé que está todo bien.", period), nil
	case obligation.KindWellness:
		return wellnessReminderText, nil
	}
	return "", dErrors.New(dErrors.CodeInternal, fmt.Sprintf("no reminder wording for kind %s", inst.Kind))
}
