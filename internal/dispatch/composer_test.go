package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
)

func TestCareComposerMedicationNoticeListsNames(t *testing.T) {
	meds := medication.NewService(medication.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, meds.Add(ctx, "subj-1", "Enalapril"))
	require.NoError(t, meds.Add(ctx, "subj-1", "Aspirina"))

	c := NewCareComposer(meds)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	inst := obligation.Instance{
		SubjectID: "subj-1",
		Kind:      obligation.KindMedication,
		PeriodKey: obligation.QualifiedKey(day, "mañana"),
	}

	text, err := c.NoticeText(ctx, inst)
	require.NoError(t, err)
	assert.Contains(t, text, "💊 *Recordatorio de medicamentos (mañana)*")
	assert.Contains(t, text, "Enalapril, Aspirina")
}

func TestCareComposerNightReminderNamesPeriod(t *testing.T) {
	c := NewCareComposer(medication.NewService(medication.NewMemoryStore()))
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	inst := obligation.Instance{
		SubjectID: "subj-1",
		Kind:      obligation.KindMedication,
		PeriodKey: obligation.QualifiedKey(day, "noche"),
	}

	text, err := c.ReminderText(context.Background(), inst)
	require.NoError(t, err)
	assert.Contains(t, text, "💊 *Segundo aviso*")
	assert.Contains(t, text, "medicamentos de la noche")
}

func TestCareComposerWellnessTexts(t *testing.T) {
	c := NewCareComposer(medication.NewService(medication.NewMemoryStore()))
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	inst := obligation.Instance{
		SubjectID: "subj-1",
		Kind:      obligation.KindWellness,
		PeriodKey: obligation.DailyKey(day),
	}
	ctx := context.Background()

	notice, err := c.NoticeText(ctx, inst)
	require.NoError(t, err)
	assert.Contains(t, notice, "¿Cómo estás hoy?")

	reminder, err := c.ReminderText(ctx, inst)
	require.NoError(t, err)
	assert.Contains(t, reminder, "Segundo aviso")
}
