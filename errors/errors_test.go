package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapfPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrInvalidKeyType, "map key in struct %s", "UserIndex")

	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidKeyType))
	assert.Contains(t, err.Error(), "UserIndex")
}

func TestIsGenerationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", New("boom"), false},
		{"invalid key type", ErrInvalidKeyType, true},
		{"no literal", Wrap(ErrNoLiteralForType, "const Pi"), true},
		{"void field", Wrapf(ErrVoidField, "field %d", 3), true},
		{"unknown type", ErrUnknownType, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenerationError(tt.err))
		})
	}
}
