package config

import (
	"path/filepath"
)

// Built-in variable names, always defined during expansion.
const (
	VarRoot     = "root"
	VarArchives = "archives"
	VarState    = "state"
)

// Directory names under the root.
const (
	ArchivesDirName = "archives"
	StateDirName    = "state"
)

// ActionKind names what an action does.
type ActionKind string

// Action kinds.
const (
	ActionFetch    ActionKind = "fetch"
	ActionExtract  ActionKind = "extract"
	ActionRun      ActionKind = "run"
	ActionRemove   ActionKind = "remove"
	ActionMkdir    ActionKind = "mkdir"
	ActionCopy     ActionKind = "copy"
	ActionCopyTree ActionKind = "copy_tree"
	ActionRename   ActionKind = "rename"
	ActionDir      ActionKind = "dir"
)

// String returns the string representation of the kind.
func (k ActionKind) String() string {
	return string(k)
}

// Action is a fully expanded action. Only the fields relevant to Kind are set.
type Action struct {
	Kind    ActionKind
	URL     string   // fetch
	Name    string   // fetch destination name, empty for the URL's last segment
	Archive string   // extract
	Into    string   // extract target directory, empty for the archive's base name
	Args    []string // run: tool name followed by its arguments
	Path    string   // remove, mkdir, dir
	From    string   // copy, copy_tree, rename
	To      string   // copy, copy_tree, rename
	Actions []Action // dir
}

// Step is a fully expanded step. Matrix steps produce one Step per
// combination, each with its own ID.
type Step struct {
	ID          string
	Description string
	Always      bool
	Actions     []Action
}

// Mirror is the resolved S3-compatible mirror configuration.
type Mirror struct {
	Endpoint string
	Region   string
	UseSSL   bool
}

// Enabled reports whether a mirror is configured.
func (m Mirror) Enabled() bool {
	return m.Endpoint != ""
}

// Config is the resolved, immutable configuration of one provisioning run.
// Accessors return copies, so a Config can be shared freely once built.
type Config struct {
	source  string
	root    string
	tools   map[string]string
	path    []string
	envFile string
	mirror  Mirror
	steps   []Step
}

// Source returns the manifest path the configuration was loaded from.
func (c *Config) Source() string {
	return c.source
}

// Root returns the absolute work directory.
func (c *Config) Root() string {
	return c.root
}

// ArchivesDir returns <root>/archives, the archive cache and the working
// directory of every run.
func (c *Config) ArchivesDir() string {
	return filepath.Join(c.root, ArchivesDirName)
}

// StateDir returns <root>/state, where completion markers live.
func (c *Config) StateDir() string {
	return filepath.Join(c.root, StateDirName)
}

// Tools returns a copy of the tool name to executable map.
func (c *Config) Tools() map[string]string {
	out := make(map[string]string, len(c.tools))
	for k, v := range c.tools {
		out[k] = v
	}
	return out
}

// Tool resolves a tool name to its configured executable. Unmapped names
// are returned unchanged and looked up on PATH when run.
func (c *Config) Tool(name string) string {
	if exe, ok := c.tools[name]; ok {
		return exe
	}
	return name
}

// Path returns the entries appended to PATH for the run.
func (c *Config) Path() []string {
	return append([]string(nil), c.path...)
}

// EnvFile returns the dotenv file merged into the run environment, if any.
func (c *Config) EnvFile() string {
	return c.envFile
}

// Mirror returns the archive mirror configuration.
func (c *Config) Mirror() Mirror {
	return c.mirror
}

// Steps returns the expanded steps in declaration order.
func (c *Config) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Step looks up a step by ID.
func (c *Config) Step(id string) (Step, bool) {
	for _, s := range c.steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// StepIDs returns the step IDs in declaration order.
func (c *Config) StepIDs() []string {
	ids := make([]string, len(c.steps))
	for i, s := range c.steps {
		ids[i] = s.ID
	}
	return ids
}
