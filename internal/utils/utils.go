package utils

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent indents apex log line to supplied level
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// Pad creates left padding for printf members
func Pad(length int) string {
	if length > 0 {
		return strings.Repeat(" ", length)
	}
	return " "
}

// xcodeSelectPath is the active developer directory as reported by `xcode-select -p`
var xcodeSelectPath = func() ([]byte, error) {
	return exec.Command("xcode-select", "--print-path").Output()
}

// GetXCodePath returns the active developer directory
func GetXCodePath() (string, error) {
	if runtime.GOOS != "darwin" {
		return "", fmt.Errorf("only supported on macOS")
	}
	out, err := xcodeSelectPath()
	if err != nil {
		return "", fmt.Errorf("failed to run xcode-select: %v", err)
	}
	path := strings.TrimSpace(string(out))
	if len(path) == 0 {
		return "", fmt.Errorf("xcode-select returned an empty developer directory")
	}
	return filepath.Clean(path), nil
}
