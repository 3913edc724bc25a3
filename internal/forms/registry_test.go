package forms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	for _, id := range []string{"roofing", "plumbing", "electrical", "hvac", "handyman", "flooring", "windows", "painting"} {
		cfg, ok := reg.Lookup(id)
		require.True(t, ok, "expected %s in catalog", id)
		assert.NotEmpty(t, cfg.Title)

		for _, f := range cfg.Fields {
			if f.DependsOn == nil {
				continue
			}
			_, exists := cfg.Field(f.DependsOn.Field)
			assert.True(t, exists, "%s.%s depends on missing field %s", id, f.Name, f.DependsOn.Field)
			assert.NotEmpty(t, f.DependsOn.Condition)
		}
	}

	_, ok := reg.Lookup("pool-cleaning")
	assert.False(t, ok)
}

func TestLoadDefault_ContactFieldsAppended(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	cfg, err := reg.Get("roofing")
	require.NoError(t, err)
	steps := Steps(cfg)

	var names []string
	for _, f := range steps[StepContact].Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, ContactFields, names)

	for _, f := range steps[StepServiceDetails].Fields {
		assert.False(t, IsContactField(f.Name), "contact field %s leaked into details step", f.Name)
	}
}

func TestLoadDefault_PatternsCompiled(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)
	cfg, _ := reg.Lookup("plumbing")
	zip, ok := cfg.Field("zipCode")
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid ZIP code", ValidateField(zip, Text("abc")))
}

func TestRegistryGet_UnknownService(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)
	_, err = reg.Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownService))
}

func TestCheck_RejectsUnknownDependency(t *testing.T) {
	cfg := &ServiceConfig{
		ID: "decks", Title: "Decks",
		Fields: []FieldSpec{
			{Name: "deckSize", Label: "Size", Type: TypeText, DependsOn: &DependsOn{Field: "deckType", Value: Text("new")}},
		},
	}
	err := Check(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "unknown field")
}

func TestCheck_RejectsCycle(t *testing.T) {
	cfg := &ServiceConfig{
		ID: "decks", Title: "Decks",
		Fields: []FieldSpec{
			{Name: "a", Label: "A", Type: TypeText, DependsOn: &DependsOn{Field: "b", Value: Text("x")}},
			{Name: "b", Label: "B", Type: TypeText, DependsOn: &DependsOn{Field: "a", Value: Text("y")}},
		},
	}
	err := Check(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCheck_RejectsMissingOptionsAndDuplicates(t *testing.T) {
	cfg := &ServiceConfig{
		ID: "decks", Title: "Decks",
		Fields: []FieldSpec{
			{Name: "deckType", Label: "Type", Type: TypeSelect},
			{Name: "deckType", Label: "Type again", Type: TypeText},
			{Name: "weird", Label: "Weird", Type: "slider"},
		},
	}
	err := Check(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs options")
	assert.Contains(t, err.Error(), "duplicate field")
	assert.Contains(t, err.Error(), "unknown type")
}

func TestCheck_DefaultsConditionToEquals(t *testing.T) {
	cfg := &ServiceConfig{
		ID: "decks", Title: "Decks",
		Fields: []FieldSpec{
			{Name: "deckType", Label: "Type", Type: TypeRadio, Options: []Option{{Value: "new"}}},
			{Name: "deckSize", Label: "Size", Type: TypeText, DependsOn: &DependsOn{Field: "deckType", Value: Text("new")}},
		},
	}
	require.NoError(t, Check(cfg))
	assert.Equal(t, ConditionEquals, cfg.Fields[1].DependsOn.Condition)
}

func TestNewRegistry_DuplicateIDs(t *testing.T) {
	a := &ServiceConfig{ID: "decks", Title: "Decks"}
	b := &ServiceConfig{ID: "decks", Title: "Decks 2"}
	_, err := NewRegistry(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate service id")
}

func TestLoadDir_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	doc := "id: decks\ntitle: Decks\nfields:\n  - name: deckType\n    label: Type\n    type: select\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decks.yaml"), []byte(doc), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadDir_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	contact := "fields:\n  - name: email\n    label: Email\n    type: email\n    required: true\n"
	doc := `id: decks
title: Decks
fields:
  - name: deckType
    label: Type
    type: radio
    options:
      - {value: new, label: New deck}
      - {value: repair, label: Repair}
  - name: deckSize
    label: Size
    type: text
    dependsOn: {field: deckType, value: new}
contactFields: [email]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_contact.yaml"), []byte(contact), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decks.yaml"), []byte(doc), 0o644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	cfg, ok := reg.Lookup("decks")
	require.True(t, ok)
	require.Len(t, cfg.Fields, 3)
	assert.Equal(t, "email", cfg.Fields[2].Name)
	assert.Len(t, reg.List(), 1)
}

func TestLoadDir_UnknownContactField(t *testing.T) {
	dir := t.TempDir()
	doc := "id: decks\ntitle: Decks\nfields: []\ncontactFields: [email]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decks.yaml"), []byte(doc), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown contact field")
}
