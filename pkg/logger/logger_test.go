package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := New(level, "console")
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}

	l, err := New("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New("info", "")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "console")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() { NewNop().Info("ignored") })
}
