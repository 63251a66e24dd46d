package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"FOXSHOP_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("FOXSHOP_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("FOXSHOP_TEST_KEY", "default"))
}

func TestGetEnvFallsBack(t *testing.T) {
	Env = nil
	t.Setenv("FOXSHOP_TEST_OS", "from-os")

	assert.Equal(t, "from-os", GetEnv("FOXSHOP_TEST_OS", "default"))
	assert.Equal(t, "default", GetEnv("FOXSHOP_TEST_MISSING", "default"))
}

func TestGetEnvIntAndDuration(t *testing.T) {
	Env = map[string]string{
		"WORKERS":   "7",
		"BROKEN":    "seven",
		"INTERVAL":  "90s",
		"BAD_DELAY": "soon",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 7, GetEnvInt("WORKERS", 3))
	assert.Equal(t, 3, GetEnvInt("BROKEN", 3))
	assert.Equal(t, 90*time.Second, GetEnvDuration("INTERVAL", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("BAD_DELAY", time.Minute))
}
