package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		wantOut []string
		notOut  []string
		wantErr bool
	}{
		{
			name:    "default version",
			info:    BuildInfo{Version: "0.1.0", GitCommit: "unknown", BuildDate: "unknown"},
			wantOut: []string{"vinline v0.1.0", "Verilog", "go:"},
			notOut:  []string{"commit:", "built:"},
		},
		{
			name:    "release build",
			info:    BuildInfo{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2026-01-02"},
			wantOut: []string{"vinline v1.2.3", "commit: abc1234", "built:  2026-01-02"},
		},
		{
			name:    "dev version",
			info:    BuildInfo{Version: "dev"},
			wantOut: []string{"vinline vdev"},
			notOut:  []string{"commit:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			output := buf.String()
			for _, want := range tt.wantOut {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
			for _, not := range tt.notOut {
				if strings.Contains(output, not) {
					t.Errorf("output should not contain %q, got: %s", not, output)
				}
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})

	if cmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cmd.Use, "version")
	}

	if cmd.Short == "" {
		t.Error("Short should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long should not be empty")
	}
}
