package lanwatch

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/arp"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/command"
)

func TestDebugLog_Gating(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var calls []Component
	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		calls = append(calls, component)
	})

	SetDebugLevel(DebugOff)
	debugLog(ComponentPing, "a")
	debugLogVerbose(ComponentPing, "b")
	if len(calls) != 0 {
		t.Fatalf("expected 0 calls with DebugOff, got %d", len(calls))
	}

	SetDebugLevel(DebugBasic)
	debugLog(ComponentPing, "c")
	debugLogVerbose(ComponentPing, "d")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call with DebugBasic, got %d", len(calls))
	}

	SetDebugLevel(DebugVerbose)
	debugLogVerbose(ComponentCommand, "e")
	if len(calls) != 2 || calls[1] != ComponentCommand {
		t.Fatalf("unexpected calls with DebugVerbose: %v", calls)
	}
	if got := GetDebugLevel(); got != DebugVerbose {
		t.Fatalf("expected GetDebugLevel()=%v, got %v", DebugVerbose, got)
	}
}

func TestSubpackageDebugLoggerWiring(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var got []Component
	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		got = append(got, component)
	})
	SetDebugLevel(DebugBasic)

	arp.DebugLogger("hello %s", "world")
	command.DebugLogger("verbose only")
	if len(got) != 1 || got[0] != ComponentARP {
		t.Fatalf("expected a single ComponentARP call, got %v", got)
	}

	SetDebugLevel(DebugVerbose)
	command.DebugLogger("now visible")
	if len(got) != 2 || got[1] != ComponentCommand {
		t.Fatalf("expected ComponentCommand call, got %v", got)
	}
}

func TestZapDebugLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := ZapDebugLogger(zap.New(core))

	log(ComponentDNS, "%s -> %s", "10.0.0.1", "router.lan")

	entries := logs.FilterMessage("10.0.0.1 -> router.lan").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	if got := entries[0].ContextMap()["component"]; got != LogPrefixDNS {
		t.Fatalf("component = %v, want %s", got, LogPrefixDNS)
	}
}

func TestComponentToPrefix(t *testing.T) {
	tests := map[Component]string{
		ComponentEngine:    LogPrefixEngine,
		ComponentARP:       LogPrefixARP,
		ComponentVendor:    LogPrefixOUI,
		Component("other"): LogPrefixLANWatch,
	}
	for c, want := range tests {
		if got := ComponentToPrefix(c); got != want {
			t.Errorf("ComponentToPrefix(%q) = %q, want %q", c, got, want)
		}
	}
}

func TestVersionInfo(t *testing.T) {
	if got := VersionInfo(); got != "go-lanwatch v"+Version {
		t.Fatalf("unexpected version info %q", got)
	}
}
