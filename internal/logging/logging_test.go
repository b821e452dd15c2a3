package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LevelByVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, false)
	l.Debug().Msg("hidden")
	l.Warn().Str("dir", "/x").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "dir=/x")

	buf.Reset()
	l = New(&buf, true, false)
	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
