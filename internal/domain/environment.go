package domain

// EnvironmentInfo is what environment detection supplies for one session.
// PythonEnv is informational: it shapes generation prompts, never classification.
type EnvironmentInfo struct {
	Dialect       ShellDialect
	PythonEnv     PythonEnvKind
	PythonEnvName string
	OS            string
	WorkingDir    string
	User          string
	IsAdmin       bool
}

// InVirtualEnv reports whether any Python environment manager is active.
func (e EnvironmentInfo) InVirtualEnv() bool {
	return e.PythonEnv != "" && e.PythonEnv != PythonEnvNone
}
