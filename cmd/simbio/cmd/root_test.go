package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/simbio/internal/simctl"
	"github.com/blacktop/simbio/pkg/coresim"
	"github.com/fatih/color"
	"github.com/hashicorp/go-version"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SIMULATOR_UDID", "")
	t.Setenv("SIMBIO_UDID", "")
	t.Setenv("DEVELOPER_DIR", "/Applications/Xcode.app/Contents/Developer")
	t.Setenv("HOME", t.TempDir())

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetOut(&stderr)
	t.Cleanup(func() {
		rootCmd.SetErr(nil)
		rootCmd.SetOut(nil)
	})

	err := execute(args)
	return stderr.String(), err
}

func TestUnknownAction(t *testing.T) {
	out, err := run(t, "frobnicate")
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage on stderr, got: %q", out)
	}
}

func TestMissingAction(t *testing.T) {
	out, err := run(t)
	if err == nil {
		t.Fatal("expected error without an action")
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage on stderr, got: %q", out)
	}
}

func TestTooManyArgs(t *testing.T) {
	out, err := run(t, "enroll", "8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C", "extra")
	if err == nil {
		t.Fatal("expected error for extra arguments")
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage on stderr, got: %q", out)
	}
}

func TestMissingUDID(t *testing.T) {
	for _, action := range []string{"enroll", "unenroll"} {
		t.Run(action, func(t *testing.T) {
			_, err := run(t, action)
			if !errors.Is(err, coresim.ErrParameter) {
				t.Fatalf("expected parameter error, got: %v", err)
			}
			if code := coresim.CodeOf(err); code != coresim.CodeMissingUDID {
				t.Errorf("code = %d, want %d", code, coresim.CodeMissingUDID)
			}
		})
	}
}

func TestMalformedUDID(t *testing.T) {
	_, err := run(t, "enroll", "not-a-udid")
	if !errors.Is(err, coresim.ErrParameter) {
		t.Fatalf("expected parameter error, got: %v", err)
	}
	if code := coresim.CodeOf(err); code != coresim.CodeInvalidUDID {
		t.Errorf("code = %d, want %d", code, coresim.CodeInvalidUDID)
	}
}

func TestUDIDFromEnvironment(t *testing.T) {
	t.Setenv("SIMULATOR_UDID", "garbage-from-env")
	// run() clears SIMULATOR_UDID, so call execute directly
	t.Setenv("HOME", t.TempDir())
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	defer rootCmd.SetErr(nil)

	err := execute([]string{"unenroll"})
	if code := coresim.CodeOf(err); code != coresim.CodeInvalidUDID {
		t.Fatalf("expected the env UDID to be validated, got: %v", err)
	}
}

func TestValidUDIDReachesFramework(t *testing.T) {
	_, err := run(t, "enroll", "8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C")
	if err == nil {
		t.Skip("CoreSimulator is available and the simulator exists")
	}
	switch coresim.CodeOf(err) {
	case coresim.CodeMissingUDID, coresim.CodeInvalidUDID:
		t.Errorf("a well formed UDID should pass validation, got: %v", err)
	}
}

func TestPrintRuntimes(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	runtimes := []simctl.Runtime{
		{
			Platform: "iOS",
			Version:  version.Must(version.NewVersion("17.2")),
			Devices: []simctl.Device{
				{Name: "iPhone 15 Pro", UDID: "22222222-2222-2222-2222-222222222222", State: "Booted", IsAvailable: true, LastBootedAt: time.Now().Add(-2 * time.Hour)},
				{Name: "iPhone SE (3rd generation)", UDID: "33333333-3333-3333-3333-333333333333", State: "Shutdown", IsAvailable: true},
			},
		},
		{
			Platform: "watchOS",
			Version:  version.Must(version.NewVersion("10.2")),
			Devices: []simctl.Device{
				{Name: "Apple Watch Series 9 (45mm)", UDID: "44444444-4444-4444-4444-444444444444", State: "Shutdown", AvailabilityError: "runtime profile not found"},
			},
		},
	}

	var buf bytes.Buffer
	if n := printRuntimes(&buf, runtimes, false); n != 3 {
		t.Errorf("printRuntimes() = %d, want 3", n)
	}
	out := buf.String()
	for _, want := range []string{"iOS 17.2", "watchOS 10.2", "booted 2 hours ago", "unavailable: runtime profile not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if n := printRuntimes(&buf, runtimes, true); n != 1 {
		t.Errorf("printRuntimes(booted) = %d, want 1", n)
	}
	if strings.Contains(buf.String(), "watchOS") {
		t.Errorf("runtimes without booted devices should be skipped:\n%s", buf.String())
	}
}
