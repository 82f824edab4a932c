package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitID(t *testing.T) {
	assert.Equal(t, "Hello", UnitID("", "Hello"))
	assert.Equal(t, "menu\x04Hello", UnitID("menu", "Hello"))
}

func TestHashUnitID_StableAcrossCalls(t *testing.T) {
	a := HashUnitID(UnitID("menu", "Hello"))
	b := HashUnitID(UnitID("menu", "Hello"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	// Identity changes with the source text.
	c := HashUnitID(UnitID("menu", "Hello!"))
	assert.NotEqual(t, a, c)
}

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fuzzy  bool
		want   int
	}{
		{"Empty", "", false, StateUntranslated},
		{"EmptyFuzzy", "", true, StateUntranslated},
		{"EmptyPluralForms", "\x00", false, StateUntranslated},
		{"Translated", "Bonjour", false, StateTranslated},
		{"Fuzzy", "Bonjour", true, StateFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(tt.target, tt.fuzzy))
		})
	}
}
