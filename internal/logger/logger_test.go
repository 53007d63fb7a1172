package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsBothEncodings(t *testing.T) {
	for _, json := range []bool{false, true} {
		l, err := New(json, true)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 10))
	assert.Equal(t, "ab...", TruncateForLog("abcdef", 2))
	assert.Equal(t, "", TruncateForLog("abc", 0))
	assert.Equal(t, "héé...", TruncateForLog("hééllo", 3))
}
