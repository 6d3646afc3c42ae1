package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomains(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
		{
			name:     "marketing purpose",
			text:     "Envío de newsletters y campañas de publicidad",
			expected: []string{"marketing"},
		},
		{
			name:     "hr purpose",
			text:     "Gestión de nóminas de los empleados",
			expected: []string{"hr"},
		},
		{
			name:     "mixed domains sorted",
			text:     "facturación de ventas a clientes",
			expected: []string{"finance", "sales"},
		},
		{
			name:     "no known domain",
			text:     "mantenimiento del jardín",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Domains(tt.text))
		})
	}
}

func TestHasDomain(t *testing.T) {
	assert.True(t, HasDomain("campañas de marketing digital", DomainMarketing))
	assert.False(t, HasDomain("campañas de marketing digital", DomainHR))
}

func TestStagePresence(t *testing.T) {
	presence := StagePresence("Recogida y almacenamiento de datos de clientes")

	assert.True(t, presence[StageCollection])
	assert.True(t, presence[StageStorage])
	assert.False(t, presence[StageProcessing])
	assert.False(t, presence[StageSharing])

	// All four stages are always reported.
	assert.Len(t, presence, 4)
}

func TestStageAgreement(t *testing.T) {
	// Identical stage footprint: full agreement.
	assert.Equal(t, 1.0, StageAgreement(
		"recogida de datos para tratamiento",
		"recopilación y procesamiento de información",
	))

	// Empty texts agree on the absence of every stage.
	assert.Equal(t, 1.0, StageAgreement("", ""))

	// One stage disagrees out of four.
	assert.Equal(t, 0.75, StageAgreement(
		"recogida de datos",
		"recogida y cesión de datos",
	))

	// Symmetric.
	a, b := "almacenamiento de datos", "transferencia internacional"
	assert.Equal(t, StageAgreement(a, b), StageAgreement(b, a))
}
