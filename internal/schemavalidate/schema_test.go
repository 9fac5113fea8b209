package schemavalidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluffgo/pluffgo/internal/engine"
)

func writeSchema(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const objectSchema = `{
  "type": "object",
  "required": ["name", "count"],
  "properties": {
    "name": {"type": "string"},
    "count": {"type": "integer"}
  }
}`

func TestValidate_EmptySchemaPathAlwaysPasses(t *testing.T) {
	v := New()
	err := v.Validate("", &engine.ConfigElement{Attrs: map[string]string{"anything": "goes"}})
	assert.NoError(t, err)
}

func TestValidate_MatchingConfigPasses(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, objectSchema)
	v := New()

	cfg := &engine.ConfigElement{Attrs: map[string]string{"name": "widget", "count": "3"}}
	assert.NoError(t, v.Validate(path, cfg))
}

func TestValidate_MissingRequiredPropertyFails(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, objectSchema)
	v := New()

	cfg := &engine.ConfigElement{Attrs: map[string]string{"name": "widget"}}
	err := v.Validate(path, cfg)
	assert.Error(t, err)
}

func TestValidate_ScalarCoercionComparesByType(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, objectSchema)
	v := New()

	// "count" arrives as a string attribute but must compare as an integer.
	cfg := &engine.ConfigElement{Attrs: map[string]string{"name": "widget", "count": "not-a-number"}}
	err := v.Validate(path, cfg)
	assert.Error(t, err, "a non-numeric count string must fail the integer type check")
}

func TestValidate_NilConfigIsEmptyObject(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, `{"type":"object"}`)
	v := New()

	assert.NoError(t, v.Validate(path, nil))
}

func TestValidate_CachesCompiledSchemaAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, objectSchema)
	v := New()

	cfg := &engine.ConfigElement{Attrs: map[string]string{"name": "widget", "count": "3"}}
	require.NoError(t, v.Validate(path, cfg))
	require.NoError(t, v.Validate(path, cfg))
	assert.Len(t, v.cache, 1)
}

func TestValidate_NestedChildrenConvertRecursively(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, `{
		"type": "object",
		"properties": {
			"child": {
				"type": "object",
				"required": ["flag"],
				"properties": {"flag": {"type": "boolean"}}
			}
		}
	}`)
	v := New()

	cfg := &engine.ConfigElement{
		Children: []*engine.ConfigElement{
			{Name: "child", Attrs: map[string]string{"flag": "true"}},
		},
	}
	assert.NoError(t, v.Validate(path, cfg))
}
