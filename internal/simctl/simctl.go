// Package simctl lists simulators through `xcrun simctl`.
package simctl

import (
	"encoding/json"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

const runtimePrefix = "com.apple.CoreSimulator.SimRuntime."

// Device is a simulator as reported by `simctl list devices --json`.
type Device struct {
	Name                 string    `json:"name"`
	UDID                 string    `json:"udid"`
	State                string    `json:"state"`
	IsAvailable          bool      `json:"isAvailable"`
	AvailabilityError    string    `json:"availabilityError,omitempty"`
	DeviceTypeIdentifier string    `json:"deviceTypeIdentifier,omitempty"`
	DataPath             string    `json:"dataPath,omitempty"`
	LogPath              string    `json:"logPath,omitempty"`
	LastBootedAt         time.Time `json:"lastBootedAt,omitzero"`

	Runtime string `json:"runtime,omitempty"`
}

// Booted reports whether simctl considers the device running.
func (d Device) Booted() bool {
	return d.State == "Booted"
}

// Runtime groups the devices of one simulator runtime.
type Runtime struct {
	Identifier string           `json:"identifier"`
	Platform   string           `json:"platform"`
	Version    *version.Version `json:"-"`
	Devices    []Device         `json:"devices"`
}

// Name is the human readable runtime name, e.g. "iOS 17.2".
func (r Runtime) Name() string {
	if r.Version == nil {
		return r.Platform
	}
	return r.Platform + " " + r.Version.Original()
}

type listOutput struct {
	Devices map[string][]Device `json:"devices"`
}

// ParseRuntimeIdentifier splits com.apple.CoreSimulator.SimRuntime.iOS-17-2
// into its platform and version.
func ParseRuntimeIdentifier(id string) (string, *version.Version) {
	name := strings.TrimPrefix(id, runtimePrefix)
	platform, ver, found := strings.Cut(name, "-")
	if !found {
		return name, nil
	}
	v, err := version.NewVersion(strings.ReplaceAll(ver, "-", "."))
	if err != nil {
		return name, nil
	}
	return platform, v
}

// Parse decodes simctl JSON and returns runtimes sorted by platform then
// newest version first.
func Parse(data []byte) ([]Runtime, error) {
	var out listOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to parse simctl output")
	}

	runtimes := make([]Runtime, 0, len(out.Devices))
	for id, devices := range out.Devices {
		platform, ver := ParseRuntimeIdentifier(id)
		rt := Runtime{
			Identifier: id,
			Platform:   platform,
			Version:    ver,
		}
		for _, dev := range devices {
			dev.Runtime = rt.Name()
			rt.Devices = append(rt.Devices, dev)
		}
		sort.SliceStable(rt.Devices, func(i, j int) bool {
			return rt.Devices[i].Name < rt.Devices[j].Name
		})
		runtimes = append(runtimes, rt)
	}

	sort.Slice(runtimes, func(i, j int) bool {
		a, b := runtimes[i], runtimes[j]
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		switch {
		case a.Version == nil && b.Version == nil:
			return a.Identifier < b.Identifier
		case a.Version == nil:
			return false
		case b.Version == nil:
			return true
		}
		return a.Version.GreaterThan(b.Version)
	})

	return runtimes, nil
}

// Booted returns every booted device across runtimes.
func Booted(runtimes []Runtime) []Device {
	var booted []Device
	for _, rt := range runtimes {
		for _, dev := range rt.Devices {
			if dev.Booted() {
				booted = append(booted, dev)
			}
		}
	}
	return booted
}

// List runs `xcrun simctl list devices --json` against developerDir.
func List(developerDir string) ([]Runtime, error) {
	if runtime.GOOS != "darwin" {
		return nil, errors.New("simctl is only supported on macOS")
	}
	cmd := exec.Command("xcrun", "simctl", "list", "devices", "--json")
	if len(developerDir) > 0 {
		cmd.Env = append(os.Environ(), "DEVELOPER_DIR="+developerDir)
	}
	log.WithField("cmd", cmd.String()).Debug("Listing simulators")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, errors.Wrapf(err, "simctl failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errors.Wrap(err, "failed to run simctl")
	}
	return Parse(out)
}
