package sysutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

func restoreLogging(t *testing.T) {
	t.Helper()
	lvl, lg := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(lvl)
		log.Logger = lg
	})
}

func TestSetLogLevel(t *testing.T) {
	restoreLogging(t)

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"panic", zerolog.PanicLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogger_JSON(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	SetupLogger("warn", false, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("pet", "Rex").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"pet":"Rex"`) || !strings.Contains(out, `"time":`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	SetupLogger("info", true, &buf)
	log.Info().Msg("hello")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("pretty output looks like JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("message missing: %s", buf.String())
	}
}

func TestParseLocale(t *testing.T) {
	if got := ParseLocale("tr"); got != language.Turkish {
		t.Fatalf("tr -> %v", got)
	}
	if got := ParseLocale(" en-GB "); got != language.BritishEnglish {
		t.Fatalf("en-GB -> %v", got)
	}
	for _, in := range []string{"", "und", "not a tag!"} {
		if got := ParseLocale(in); got != language.Und {
			t.Fatalf("%q -> %v; want und", in, got)
		}
	}
}
