package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/oradash/internal/config"
	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/session"
)

func validTestConfig() model.Config {
	return model.Config{
		RotationPeriod: secondsToDuration(defaultRotate),
		TickInterval:   secondsToDuration(defaultTick),
		TopK:           defaultTop,
	}
}

func TestValidateConfigDefaults(t *testing.T) {
	if err := validateConfig(validTestConfig()); err != nil {
		t.Fatalf("expected defaults to be valid: %v", err)
	}
}

func TestValidateConfigBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{"rotate too short", func(c *model.Config) { c.RotationPeriod = 5 * time.Second }},
		{"rotate too long", func(c *model.Config) { c.RotationPeriod = 301 * time.Second }},
		{"tick too short", func(c *model.Config) { c.TickInterval = 50 * time.Millisecond }},
		{"tick too long", func(c *model.Config) { c.TickInterval = 2 * time.Second }},
		{"top zero", func(c *model.Config) { c.TopK = 0 }},
		{"top too large", func(c *model.Config) { c.TopK = 51 }},
	}
	for _, tc := range cases {
		cfg := validTestConfig()
		tc.mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	if !strings.Contains(tmpl, "[dashboard]") || !strings.Contains(tmpl, "# rotate = 30.0") {
		t.Fatalf("unexpected template:\n%s", tmpl)
	}
	var cfg config.FileConfig
	if _, err := toml.Decode(tmpl, &cfg); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Dashboard.RotateSeconds != nil {
		t.Fatalf("expected all keys commented out")
	}
}

func TestWriteReportPrintsAllViews(t *testing.T) {
	now := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	sess := session.New(validTestConfig(), session.WithToday(model.DateOf))
	sess.SetUpload(session.Upload{Name: "alert.log", Content: `2024-01-05 10:00:00 foo ORA-00942: table or view does not exist
2024-02-01 09:00:00 bar ORA-01017: invalid username/password
`})

	var buf bytes.Buffer
	if err := writeReport(&buf, sess, now, 60); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"1. Last 30 Days (Line)",
		"6. Monthly History (Bars)",
		"9. Top 10 Recent Errors",
		"10. Top 10 Historical Errors",
		"ORA-00942",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in report:\n%s", want, out)
		}
	}
}

func TestWriteReportFailsOnMalformedLog(t *testing.T) {
	sess := session.New(validTestConfig())
	sess.SetUpload(session.Upload{Name: "bad.log", Content: "2024-02-30 10:00:00 ORA-00001: bad day\n"})
	var buf bytes.Buffer
	err := writeReport(&buf, sess, time.Now(), 60)
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected parse failure, got %v", err)
	}
}
