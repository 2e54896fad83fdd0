package qbittorrent

import (
	"bytes"
	"testing"
)

func TestVersionSupportsTrackerInclude(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    bool
	}{
		{name: "minimum version", version: "2.11.4", want: true},
		{name: "newer patch", version: "2.11.5", want: true},
		{name: "newer minor", version: "2.12.0", want: true},
		{name: "older patch", version: "2.11.3", want: false},
		{name: "much older", version: "2.8.3", want: false},
		{name: "empty", version: "", want: false},
		{name: "garbage", version: "not-a-version", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionSupportsTrackerInclude(tt.version); got != tt.want {
				t.Errorf("versionSupportsTrackerInclude(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestFilteredWriterDropsUnsolicitedResponseNoise(t *testing.T) {
	var buf bytes.Buffer
	fw := &filteredWriter{writer: &buf}

	n, err := fw.Write([]byte("Unsolicited response received on idle HTTP channel starting with \"H\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Fatal("expected write to report success")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected noise line to be dropped, got %q", buf.String())
	}

	if _, err := fw.Write([]byte("something else\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "something else\n" {
		t.Fatalf("expected passthrough write, got %q", got)
	}
}
