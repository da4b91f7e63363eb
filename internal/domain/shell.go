package domain

import (
	"fmt"
	"strings"
)

// ShellDialect enumerates the shells whose syntax the engine understands.
type ShellDialect string

const (
	DialectCMD        ShellDialect = "cmd"
	DialectPowerShell ShellDialect = "powershell"
	DialectBash       ShellDialect = "bash"
	DialectZsh        ShellDialect = "zsh"
	DialectFish       ShellDialect = "fish"
)

// AllDialects lists every supported dialect in a stable order.
func AllDialects() []ShellDialect {
	return []ShellDialect{DialectBash, DialectZsh, DialectFish, DialectPowerShell, DialectCMD}
}

// ParseDialect maps user input (flags, config, $SHELL basenames) to a dialect.
func ParseDialect(value string) (ShellDialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bash", "sh":
		return DialectBash, nil
	case "zsh":
		return DialectZsh, nil
	case "fish":
		return DialectFish, nil
	case "powershell", "pwsh", "ps":
		return DialectPowerShell, nil
	case "cmd", "cmd.exe":
		return DialectCMD, nil
	default:
		return "", fmt.Errorf("unsupported shell dialect %q", value)
	}
}

// IsPOSIX reports whether the dialect follows sh-style quoting and operators.
func (d ShellDialect) IsPOSIX() bool {
	return d == DialectBash || d == DialectZsh
}

// IsWindows reports whether program names are case-insensitive in the dialect.
func (d ShellDialect) IsWindows() bool {
	return d == DialectCMD || d == DialectPowerShell
}

func (d ShellDialect) String() string {
	return string(d)
}

// PythonEnvKind describes the active Python environment manager.
type PythonEnvKind string

const (
	PythonEnvNone   PythonEnvKind = "none"
	PythonEnvVenv   PythonEnvKind = "venv"
	PythonEnvConda  PythonEnvKind = "conda"
	PythonEnvPipenv PythonEnvKind = "pipenv"
	PythonEnvPoetry PythonEnvKind = "poetry"
)
