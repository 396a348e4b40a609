package obligation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedicationVocabulary(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"sí", true},
		{"Si", true},
		{"ya tomé", true},
		{"Ya los tomé!", true},
		{"listo", true},
		{"tomé mis medicamentos", true},
		{"TOMADOS", true},
		{"después los tomo", false},
		{"no todavía", false},
		{"hola", false},
	}
	for _, tc := range cases {
		t.Run(tc.reply, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(KindMedication, tc.reply))
		})
	}
}

func TestWellnessVocabulary(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"bien", true},
		{"Estoy bien, gracias", true},
		{"más o menos", true},
		{"mas o menos", true},
		{"me siento triste", true},
		{"excelente!", true},
		{"Cansada pero contenta", true},
		{"qué hora es", false},
	}
	for _, tc := range cases {
		t.Run(tc.reply, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(KindWellness, tc.reply))
		})
	}
}

func TestMatchingIsTokenBased(t *testing.T) {
	// "si" inside another word must not confirm.
	assert.False(t, Matches(KindMedication, "siempre me olvido"))
	assert.False(t, Matches(KindWellness, "bienvenido"))
}

func TestPeriodKeyParts(t *testing.T) {
	k := PeriodKey("2026-05-01/mañana")
	assert.Equal(t, "2026-05-01", k.Day())
	assert.Equal(t, "mañana", k.Qualifier())

	d := PeriodKey("2026-05-01")
	assert.Equal(t, "2026-05-01", d.Day())
	assert.Equal(t, "", d.Qualifier())
}
