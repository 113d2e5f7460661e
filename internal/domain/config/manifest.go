package config

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a manifest encoding.
type Format string

// Supported manifest formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for manifests that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// FormatFromPath picks the manifest format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Manifest is the provision file as written by the user, before variables
// are expanded and matrices are unrolled.
type Manifest struct {
	Root    string            `yaml:"root" toml:"root"`
	Tools   map[string]string `yaml:"tools,omitempty" toml:"tools,omitempty"`
	Path    []string          `yaml:"path,omitempty" toml:"path,omitempty"`
	EnvFile string            `yaml:"env_file,omitempty" toml:"env_file,omitempty"`
	Vars    map[string]string `yaml:"vars,omitempty" toml:"vars,omitempty"`
	Mirror  *MirrorSpec       `yaml:"mirror,omitempty" toml:"mirror,omitempty"`
	Steps   []StepSpec        `yaml:"steps" toml:"steps"`
}

// MirrorSpec configures an S3-compatible archive mirror. Credentials are
// read from the standard AWS environment variables.
type MirrorSpec struct {
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
	Region   string `yaml:"region,omitempty" toml:"region,omitempty"`
	UseSSL   *bool  `yaml:"use_ssl,omitempty" toml:"use_ssl,omitempty"`
}

// StepSpec declares one named step.
type StepSpec struct {
	Name        string              `yaml:"name" toml:"name"`
	Description string              `yaml:"description,omitempty" toml:"description,omitempty"`
	Always      bool                `yaml:"always,omitempty" toml:"always,omitempty"`
	Matrix      map[string][]string `yaml:"matrix,omitempty" toml:"matrix,omitempty"`
	Actions     []ActionSpec        `yaml:"actions" toml:"actions"`
}

// ActionSpec declares one action. Exactly one of the kind fields is set;
// As, Into and Actions qualify fetch, extract and dir respectively.
type ActionSpec struct {
	Fetch    string       `yaml:"fetch,omitempty" toml:"fetch,omitempty"`
	As       string       `yaml:"as,omitempty" toml:"as,omitempty"`
	Extract  string       `yaml:"extract,omitempty" toml:"extract,omitempty"`
	Into     string       `yaml:"into,omitempty" toml:"into,omitempty"`
	Run      string       `yaml:"run,omitempty" toml:"run,omitempty"`
	Remove   string       `yaml:"remove,omitempty" toml:"remove,omitempty"`
	Mkdir    string       `yaml:"mkdir,omitempty" toml:"mkdir,omitempty"`
	Copy     *PathPair    `yaml:"copy,omitempty" toml:"copy,omitempty"`
	CopyTree *PathPair    `yaml:"copy_tree,omitempty" toml:"copy_tree,omitempty"`
	Rename   *PathPair    `yaml:"rename,omitempty" toml:"rename,omitempty"`
	Dir      string       `yaml:"dir,omitempty" toml:"dir,omitempty"`
	Actions  []ActionSpec `yaml:"actions,omitempty" toml:"actions,omitempty"`
}

// PathPair is the source and destination of copy, copy_tree and rename.
type PathPair struct {
	From string `yaml:"from" toml:"from"`
	To   string `yaml:"to" toml:"to"`
}

// kinds returns the action kinds set on the spec.
func (a ActionSpec) kinds() []ActionKind {
	var kinds []ActionKind
	add := func(set bool, kind ActionKind) {
		if set {
			kinds = append(kinds, kind)
		}
	}
	add(a.Fetch != "", ActionFetch)
	add(a.Extract != "", ActionExtract)
	add(a.Run != "", ActionRun)
	add(a.Remove != "", ActionRemove)
	add(a.Mkdir != "", ActionMkdir)
	add(a.Copy != nil, ActionCopy)
	add(a.CopyTree != nil, ActionCopyTree)
	add(a.Rename != nil, ActionRename)
	add(a.Dir != "", ActionDir)
	return kinds
}

// ParseManifest decodes a manifest. Unknown keys are rejected so typos in
// action names surface as errors instead of silently skipped actions.
func ParseManifest(data []byte, format Format) (*Manifest, error) {
	var m Manifest

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	return &m, nil
}
