package corpus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClass(t *testing.T) {
	tests := []struct {
		raw   string
		class Class
		ok    bool
	}{
		{"PER", ClassPerson, true},
		{"per", ClassPerson, true},
		{"Person", ClassPerson, true},
		{"LOC", ClassLocation, true},
		{"loc", ClassLocation, true},
		{"GPE", ClassLocation, true},
		{" gpe ", ClassLocation, true},
		{"ORG", "", false},
		{"MISC", "", false},
		{"", "", false},
		{"location", "", false},
	}

	for _, tt := range tests {
		class, ok := ParseClass(tt.raw)
		assert.Equal(t, tt.ok, ok, "tag %q", tt.raw)
		assert.Equal(t, tt.class, class, "tag %q", tt.raw)
	}
}

func TestNormalizeEntities(t *testing.T) {
	var raw []json.RawMessage
	err := json.Unmarshal([]byte(`[
		["Кот Баюн", "PER"],
		["Тридевятое царство", "loc"],
		["Москва", "GPE"],
		["Царская дума", "ORG"],
		["Нечто", "MISC"],
		["одинокий"],
		["a", "PER", "extra"],
		"не пара",
		[42, "PER"],
		["Иван", null],
		["", "PER"],
		{"text": "Иван", "type": "PER"}
	]`), &raw)
	assert.NoError(t, err)

	entities := NormalizeEntities(raw)
	assert.Equal(t, []Entity{
		{Text: "Кот Баюн", Class: ClassPerson},
		{Text: "Тридевятое царство", Class: ClassLocation},
		{Text: "Москва", Class: ClassLocation},
	}, entities)
}

func TestNormalizeEntities_AllFiltered(t *testing.T) {
	raw := []json.RawMessage{json.RawMessage(`["Дума", "ORG"]`)}

	entities := NormalizeEntities(raw)
	assert.NotNil(t, entities)
	assert.Empty(t, entities)

	assert.Empty(t, NormalizeEntities(nil))
}
