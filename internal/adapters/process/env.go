package process

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is a set of changes applied to the process environment for
// the duration of a run.
type Environment struct {
	vars        map[string]string
	pathEntries []string
}

// NewEnvironment creates an empty set of environment changes.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]string)}
}

// AppendPath adds executable search path entries after the inherited PATH.
func (e *Environment) AppendPath(entries ...string) *Environment {
	for _, entry := range entries {
		if strings.TrimSpace(entry) != "" {
			e.pathEntries = append(e.pathEntries, entry)
		}
	}
	return e
}

// Set records a variable to set for the run.
func (e *Environment) Set(key, value string) *Environment {
	e.vars[key] = value
	return e
}

// LoadFile reads a dotenv file and records its variables.
func (e *Environment) LoadFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	for k, v := range vars {
		e.vars[k] = v
	}
	return nil
}

// Apply modifies the process environment and returns a function that
// restores every variable it touched to its previous state.
func (e *Environment) Apply() (restore func(), err error) {
	saved := make(map[string]*string)
	remember := func(key string) {
		if _, ok := saved[key]; ok {
			return
		}
		if prev, ok := os.LookupEnv(key); ok {
			saved[key] = &prev
		} else {
			saved[key] = nil
		}
	}

	restore = func() {
		for key, prev := range saved {
			if prev == nil {
				_ = os.Unsetenv(key)
			} else {
				_ = os.Setenv(key, *prev)
			}
		}
	}

	for key, value := range e.vars {
		remember(key)
		if err := os.Setenv(key, value); err != nil {
			restore()
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	if len(e.pathEntries) > 0 {
		remember("PATH")
		path := strings.Join(append([]string{os.Getenv("PATH")}, e.pathEntries...), string(os.PathListSeparator))
		if err := os.Setenv("PATH", strings.TrimPrefix(path, string(os.PathListSeparator))); err != nil {
			restore()
			return nil, fmt.Errorf("extend PATH: %w", err)
		}
	}

	return restore, nil
}
