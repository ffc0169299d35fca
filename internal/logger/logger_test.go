package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetup_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	Setup("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Setup("loud")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Setup("")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
