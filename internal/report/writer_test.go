package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("ods"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	require.NotNil(t, r.Get("XLSX"))
	require.NotNil(t, r.Get("Csv"))
	assert.Equal(t, "xlsx", r.Get("xlsx").Ext())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVWriter{})
	assert.Panics(t, func() { r.Register(&CSVWriter{}) })
}
