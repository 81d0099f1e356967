// Package coresim drives Apple's private CoreSimulator.framework to toggle
// simulated biometric enrollment on a booted simulator.
package coresim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/apex/log"
	"github.com/blacktop/go-plist"
	"github.com/google/uuid"
)

// BiometricEnrollmentNotification is the Darwin notification BiometricKit
// watches for enrollment changes inside the simulator.
const BiometricEnrollmentNotification = "com.apple.BiometricKit.enrollmentChanged"

const (
	// FrameworkPath is where Xcode 9+ installs CoreSimulator.
	FrameworkPath = "/Library/Developer/PrivateFrameworks/CoreSimulator.framework"
	// DefaultDeveloperDir is used when nothing else names one.
	DefaultDeveloperDir = "/Applications/Xcode.app/Contents/Developer"

	legacyFrameworkPath = "Library/PrivateFrameworks/CoreSimulator.framework"
)

// State is a SimDeviceState value.
type State uint64

const (
	StateCreating State = iota
	StateShutdown
	StateBooting
	StateBooted
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "Creating"
	case StateShutdown:
		return "Shutdown"
	case StateBooting:
		return "Booting"
	case StateBooted:
		return "Booted"
	case StateShuttingDown:
		return "Shutting Down"
	default:
		return fmt.Sprintf("Unknown(%d)", uint64(s))
	}
}

// Device is a snapshot of a SimDevice taken from the default device set.
type Device struct {
	UDID  uuid.UUID
	Name  string
	State State

	handle unsafe.Pointer
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) %s", d.Name, d.UDID, d.State)
}

// Booted reports whether the device was booted when it was looked up.
func (d *Device) Booted() bool {
	return d.State == StateBooted
}

// Simulator is the slice of the device registry needed to change enrollment.
type Simulator interface {
	Device(udid uuid.UUID) (*Device, error)
	SetNotificationState(d *Device, name string, state uint64) error
	PostNotification(d *Device, name string) error
}

// ParseUDID validates a simulator UDID string.
func ParseUDID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return uuid.Nil, parameterError(CodeMissingUDID, "missing simulator UDID (pass it as an argument or set SIMULATOR_UDID)")
	}
	// uuid.Parse also accepts urn: and braced forms which CoreSimulator never emits
	if len(s) != 36 {
		return uuid.Nil, parameterError(CodeInvalidUDID, "invalid simulator UDID %q", s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, parameterError(CodeInvalidUDID, "invalid simulator UDID %q", s)
	}
	return id, nil
}

// SetEnrollment sets the biometric enrollment state of the booted simulator
// identified by udid and broadcasts the change.
func SetEnrollment(sim Simulator, udid uuid.UUID, enrolled bool) error {
	dev, err := sim.Device(udid)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"name":  dev.Name,
		"state": dev.State,
	}).Debug("Found simulator")

	if !dev.Booted() {
		return parameterError(CodeDeviceNotBooted, "simulator %s is not booted (state: %s)", udid, dev.State)
	}

	var state uint64
	if enrolled {
		state = 1
	}
	if err := sim.SetNotificationState(dev, BiometricEnrollmentNotification, state); err != nil {
		return err
	}
	return sim.PostNotification(dev, BiometricEnrollmentNotification)
}

// Config selects the developer directory and framework bundle to load.
type Config struct {
	DeveloperDir  string
	// FrameworkPath overrides the bundle search when set
	FrameworkPath string
}

// FrameworkCandidates returns the CoreSimulator bundle paths to try in order.
func (c Config) FrameworkCandidates() []string {
	if len(c.FrameworkPath) > 0 {
		return []string{c.FrameworkPath}
	}
	candidates := []string{FrameworkPath}
	if len(c.DeveloperDir) > 0 {
		candidates = append(candidates, filepath.Join(c.DeveloperDir, legacyFrameworkPath))
	}
	return candidates
}

// FrameworkInfo is the subset of the bundle Info.plist worth reporting.
type FrameworkInfo struct {
	Identifier   string `plist:"CFBundleIdentifier,omitempty"`
	Version      string `plist:"CFBundleVersion,omitempty"`
	ShortVersion string `plist:"CFBundleShortVersionString,omitempty"`
}

func (i FrameworkInfo) String() string {
	if len(i.ShortVersion) > 0 && i.ShortVersion != i.Version {
		return fmt.Sprintf("%s %s (%s)", i.Identifier, i.ShortVersion, i.Version)
	}
	return fmt.Sprintf("%s %s", i.Identifier, i.Version)
}

// ReadFrameworkInfo decodes the Info.plist of the framework bundle at path.
func ReadFrameworkInfo(frameworkPath string) (*FrameworkInfo, error) {
	var data []byte
	var err error
	for _, p := range []string{
		filepath.Join(frameworkPath, "Resources", "Info.plist"),
		filepath.Join(frameworkPath, "Versions", "A", "Resources", "Info.plist"),
	} {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read framework Info.plist: %w", err)
	}
	var info FrameworkInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse framework Info.plist: %w", err)
	}
	return &info, nil
}

func bundleExecutable(frameworkPath string) string {
	return filepath.Join(frameworkPath, strings.TrimSuffix(filepath.Base(frameworkPath), ".framework"))
}
