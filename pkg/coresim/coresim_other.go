//go:build !darwin || !cgo

package coresim

import (
	"errors"
	"runtime"

	"github.com/google/uuid"
)

// Context is unavailable without darwin and cgo.
type Context struct {
	Path string
}

// Open always fails: CoreSimulator only exists on macOS and is reached through cgo.
func Open(conf Config) (*Context, error) {
	return nil, loadError(CodeFrameworkNotFound, errors.New("requires darwin and cgo"), "CoreSimulator.framework is not available on %s", runtime.GOOS)
}

func (c *Context) Device(udid uuid.UUID) (*Device, error) {
	return nil, loadError(CodeFrameworkNotFound, nil, "CoreSimulator.framework is not loaded")
}

func (c *Context) SetNotificationState(d *Device, name string, state uint64) error {
	return loadError(CodeFrameworkNotFound, nil, "CoreSimulator.framework is not loaded")
}

func (c *Context) PostNotification(d *Device, name string) error {
	return loadError(CodeFrameworkNotFound, nil, "CoreSimulator.framework is not loaded")
}

func (c *Context) Close() error {
	return nil
}
