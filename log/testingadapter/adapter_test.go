package testingadapter_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tim-schilling/pgadapt"
	"github.com/tim-schilling/pgadapt/log/testingadapter"
)

type recorder struct {
	lines []string
}

func (r *recorder) Log(args ...any) {
	r.lines = append(r.lines, fmt.Sprintln(args...))
}

func TestLogger(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	logger := testingadapter.NewLogger(r)
	logger.Log(pgadapt.LogLevelDebug, "decoder replaced", map[string]any{"oid": 23, "format": "text"})

	assert.Equal(t, []string{"debug decoder replaced format=text oid=23\n"}, r.lines)

	// testing.TB satisfies TestingLogger.
	testingadapter.NewLogger(t).Log(pgadapt.LogLevelInfo, "hello", nil)
}
