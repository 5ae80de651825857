// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validScenario = `
frames:
  - repeat: 2
    layers:
      - buffer: {id: 1, format: rgba8888, width: 64, height: 64}
    target: {id: 100, width: 64, height: 64}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateCLI(t *testing.T) {
	valid := writeFile(t, "valid.yaml", "logLevel: debug\npanel:\n  width: 720\n  height: 1280\n")
	unknown := writeFile(t, "unknown.yaml", "logLevel: info\ncolour: red\n")
	badType := writeFile(t, "type.yaml", "panel:\n  width: wide\n")
	invalid := writeFile(t, "invalid.yaml", "overlay:\n  pipes: -1\n")
	frames := writeFile(t, "frames.yaml", validScenario)
	badFrames := writeFile(t, "bad-frames.yaml", "frames: []\n")
	withScenario := writeFile(t, "with-scenario.yaml", "scenario:\n  path: "+frames+"\n")

	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{"valid config", []string{"-f", valid}, 0, "is valid", ""},
		{"unknown key", []string{"-f", unknown}, 1, "", "Configuration error"},
		{"type mismatch", []string{"--file", badType}, 1, "", "Configuration error"},
		{"semantic error", []string{"-f", invalid}, 1, "", "Configuration error"},
		{"missing file", []string{"-f", "does-not-exist.yaml"}, 1, "", "Configuration error"},
		{"no flags", nil, 2, "", "--file or --scenario is required"},
		{"bad flag", []string{"-nope"}, 2, "", "flag provided but not defined"},
		{"scenario only", []string{"-scenario", frames}, 0, "(2 frames)", ""},
		{"bad scenario", []string{"-scenario", badFrames}, 1, "", "Scenario error"},
		{"scenario from config", []string{"-f", withScenario}, 0, "(2 frames)", ""},
		{"version", []string{"-version"}, 0, Version, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantExit, code, "stderr: %s", stderr.String())
			if tt.wantStdout != "" {
				assert.Contains(t, stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}
