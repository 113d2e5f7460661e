package config

import (
	"gopkg.in/ini.v1"
)

// Sections and keys of the tools overlay file.
const (
	toolsSection      = "tools"
	pathSection       = "path"
	pathAppendKey     = "append"
	pathListDelimiter = ";"
)

// ToolsOverlay carries the per-host part of the configuration: where the
// build tools live on this machine. It overrides the manifest's tool map.
//
//	[tools]
//	tar   = c:/program files/git/bin/tar
//	unzip = c:/program files/git/bin/unzip
//
//	[path]
//	append = c:/program files/git/bin;c:/tools
type ToolsOverlay struct {
	Tools map[string]string
	Path  []string
}

// ParseTools decodes a tools overlay from INI bytes.
func ParseTools(data []byte) (*ToolsOverlay, error) {
	// ';' separates path entries, so only " ;" and " #" start a comment.
	cfg, err := ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, data)
	if err != nil {
		return nil, err
	}

	overlay := &ToolsOverlay{Tools: make(map[string]string)}

	if sec, err := cfg.GetSection(toolsSection); err == nil {
		for _, key := range sec.Keys() {
			overlay.Tools[key.Name()] = key.String()
		}
	}

	if sec, err := cfg.GetSection(pathSection); err == nil && sec.HasKey(pathAppendKey) {
		for _, entry := range sec.Key(pathAppendKey).Strings(pathListDelimiter) {
			if entry != "" {
				overlay.Path = append(overlay.Path, entry)
			}
		}
	}

	return overlay, nil
}

// apply merges the overlay into a manifest's tools and path.
func (o *ToolsOverlay) apply(tools map[string]string, path []string) (map[string]string, []string) {
	merged := make(map[string]string, len(tools)+len(o.Tools))
	for k, v := range tools {
		merged[k] = v
	}
	for k, v := range o.Tools {
		merged[k] = v
	}
	return merged, append(append([]string(nil), path...), o.Path...)
}
