/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewZapLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{name: "debug level", level: "debug", wantDebug: true},
		{name: "trace level", level: "trace", wantDebug: true},
		{name: "info level", level: "info", wantDebug: false},
		{name: "empty level", level: "", wantDebug: false},
		{name: "unknown level", level: "bogus", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := newZapLogger(tt.level)
			if err != nil {
				t.Fatalf("newZapLogger(%q) error: %v", tt.level, err)
			}
			got := log.Core().Enabled(zapcore.DebugLevel)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestNewLoggerReturnsSync(t *testing.T) {
	log, sync, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	if sync == nil {
		t.Fatal("NewLogger() sync func is nil")
	}
	log.Info("logger initialized")
	sync()
}
