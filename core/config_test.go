package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_debug(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		debugVar  string // <ENV>_DEBUG
		wantEnv   string
		wantDebug bool
	}{
		{name: "unset env", env: "", wantEnv: "DEV", wantDebug: false},
		{name: "dev", env: "dev", wantEnv: "DEV", wantDebug: true},
		{name: "dev with debug off", env: "DEV", debugVar: "false", wantEnv: "DEV", wantDebug: false},
		{name: "qa", env: "QA", wantEnv: "QA", wantDebug: false},
		{name: "prod", env: "PROD", wantEnv: "PROD", wantDebug: false},
		{name: "prod with debug on", env: "PROD", debugVar: "true", wantEnv: "PROD", wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			if tt.debugVar != "" {
				t.Setenv(tt.wantEnv+"_DEBUG", tt.debugVar)
			}

			conf := NewConfig()
			assert.Equal(t, tt.wantEnv, conf.Env)
			assert.Equal(t, tt.wantDebug, conf.Debug)
			assert.Equal(t, 1, conf.Quiz.SelfServePoints)
			assert.Equal(t, 10, conf.Quiz.AdminPoints)
		})
	}
}
