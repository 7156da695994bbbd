package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentFieldIsAttached(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Writer: &buf}).WithComponent("feed")

	log.Info("feed served", "posts", 3)

	out := buf.String()
	assert.Contains(t, out, "feed served")
	assert.Contains(t, out, `"component":"feed"`)
	assert.Contains(t, out, `"posts":3`)
}

func TestProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Writer: &buf})

	log.Debug("noisy")

	assert.Empty(t, buf.String())
}
