package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// capture swaps the global logger for one writing JSON into a buffer.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := GetLogger()
	SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(old) })
	return &buf
}

func TestChannelsTagRecords(t *testing.T) {
	tests := []struct {
		name    string
		log     func()
		channel string
	}{
		{"commit", func() { Commit("/m/meta.xml", "verified") }, "commit"},
		{"rollback", func() { Rollback("/m/meta.xml", "cancelled") }, "rollback"},
		{"save", func() { Save("/m/meta.xml", "written") }, "save"},
		{"ugh", func() { Ugh("/m/meta.xml", nil, "adapter failed") }, "ugh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			tt.log()
			out := buf.String()
			if !strings.Contains(out, `"channel":"`+tt.channel+`"`) {
				t.Errorf("record missing channel tag: %s", out)
			}
			if !strings.Contains(out, "/m/meta.xml") {
				t.Errorf("record missing file path: %s", out)
			}
		})
	}
}

func TestMessageLeadsWithPath(t *testing.T) {
	buf := capture(t)
	Commit("/base/meta.xml", "was verified")
	if !strings.Contains(buf.String(), "/base/meta.xml - was verified") {
		t.Errorf("message should lead with the path: %s", buf.String())
	}
}

func TestFileContext(t *testing.T) {
	ctx := WithFile(context.Background(), "/base/meta.xml")
	if got := GetFile(ctx); got != "/base/meta.xml" {
		t.Errorf("GetFile = %q", got)
	}
	if got := GetFile(context.Background()); got != "" {
		t.Errorf("GetFile on empty context = %q", got)
	}
}

func TestUghIncludesError(t *testing.T) {
	buf := capture(t)
	Ugh("/m/meta.xml", errTest, "read failed")
	if !strings.Contains(buf.String(), "broken") {
		t.Errorf("record should include the error: %s", buf.String())
	}
}

var errTest = errString("broken")

type errString string

func (e errString) Error() string { return string(e) }
