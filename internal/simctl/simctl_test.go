package simctl

import (
	"testing"
	"time"
)

const listJSON = `{
  "devices" : {
    "com.apple.CoreSimulator.SimRuntime.iOS-16-4" : [
      {
        "lastBootedAt" : "2023-09-01T10:00:00Z",
        "dataPath" : "/Users/blacktop/Library/Developer/CoreSimulator/Devices/11111111-1111-1111-1111-111111111111/data",
        "logPath" : "/Users/blacktop/Library/Logs/CoreSimulator/11111111-1111-1111-1111-111111111111",
        "udid" : "11111111-1111-1111-1111-111111111111",
        "isAvailable" : true,
        "deviceTypeIdentifier" : "com.apple.CoreSimulator.SimDeviceType.iPhone-14",
        "state" : "Shutdown",
        "name" : "iPhone 14"
      }
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-2" : [
      {
        "udid" : "33333333-3333-3333-3333-333333333333",
        "isAvailable" : true,
        "state" : "Shutdown",
        "name" : "iPhone SE (3rd generation)"
      },
      {
        "lastBootedAt" : "2024-01-10T12:34:56Z",
        "udid" : "22222222-2222-2222-2222-222222222222",
        "isAvailable" : true,
        "state" : "Booted",
        "name" : "iPhone 15 Pro"
      }
    ],
    "com.apple.CoreSimulator.SimRuntime.watchOS-10-2" : [
      {
        "udid" : "44444444-4444-4444-4444-444444444444",
        "isAvailable" : false,
        "availabilityError" : "runtime profile not found",
        "state" : "Booted",
        "name" : "Apple Watch Series 9 (45mm)"
      }
    ],
    "com.apple.CoreSimulator.SimRuntime.xrOS-1-0" : [ ]
  }
}`

func TestParse(t *testing.T) {
	runtimes, err := Parse([]byte(listJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var names []string
	for _, rt := range runtimes {
		names = append(names, rt.Name())
	}
	want := []string{"iOS 17.2", "iOS 16.4", "watchOS 10.2", "xrOS 1.0"}
	if len(names) != len(want) {
		t.Fatalf("Parse() runtimes = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("runtime[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	ios17 := runtimes[0]
	if len(ios17.Devices) != 2 {
		t.Fatalf("iOS 17.2 devices = %d, want 2", len(ios17.Devices))
	}
	if ios17.Devices[0].Name != "iPhone 15 Pro" {
		t.Errorf("devices not sorted by name: %q first", ios17.Devices[0].Name)
	}
	if ios17.Devices[0].Runtime != "iOS 17.2" {
		t.Errorf("device runtime = %q", ios17.Devices[0].Runtime)
	}
	wantBoot := time.Date(2024, 1, 10, 12, 34, 56, 0, time.UTC)
	if !ios17.Devices[0].LastBootedAt.Equal(wantBoot) {
		t.Errorf("LastBootedAt = %v, want %v", ios17.Devices[0].LastBootedAt, wantBoot)
	}
	if !ios17.Devices[1].LastBootedAt.IsZero() {
		t.Errorf("LastBootedAt should be zero when never booted")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Error("Parse() expected error for invalid JSON")
	}
}

func TestBooted(t *testing.T) {
	runtimes, err := Parse([]byte(listJSON))
	if err != nil {
		t.Fatal(err)
	}
	booted := Booted(runtimes)
	if len(booted) != 2 {
		t.Fatalf("Booted() = %d devices, want 2", len(booted))
	}
	if booted[0].UDID != "22222222-2222-2222-2222-222222222222" {
		t.Errorf("Booted()[0] = %s", booted[0].UDID)
	}
	if booted[1].IsAvailable {
		t.Errorf("Booted()[1] should be the unavailable watch")
	}
}

func TestParseRuntimeIdentifier(t *testing.T) {
	tests := []struct {
		id       string
		platform string
		version  string
	}{
		{"com.apple.CoreSimulator.SimRuntime.iOS-17-2", "iOS", "17.2"},
		{"com.apple.CoreSimulator.SimRuntime.tvOS-17-0", "tvOS", "17.0"},
		{"com.apple.CoreSimulator.SimRuntime.iOS-18-0-1", "iOS", "18.0.1"},
		{"com.apple.CoreSimulator.SimRuntime.iOS", "iOS", ""},
		{"custom-runtime", "custom-runtime", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			platform, v := ParseRuntimeIdentifier(tt.id)
			if platform != tt.platform {
				t.Errorf("platform = %q, want %q", platform, tt.platform)
			}
			got := ""
			if v != nil {
				got = v.Original()
			}
			if got != tt.version {
				t.Errorf("version = %q, want %q", got, tt.version)
			}
		})
	}
}
