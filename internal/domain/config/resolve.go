package config

import (
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
)

// Resolve validates a manifest, applies the tools overlay (may be nil),
// expands every ${name} reference and unrolls step matrices. Relative
// root, path and env_file entries are taken relative to baseDir. All
// problems are returned together as an *ErrorList.
func Resolve(m *Manifest, overlay *ToolsOverlay, baseDir string) (*Config, error) {
	errs := NewValidator().Validate(m)
	if errs.HasErrors() {
		return nil, errs
	}

	r := &resolver{errs: errs}

	root := r.expand(newScope(nil), "root", m.Root)
	root = absPath(baseDir, root)

	builtins := map[string]string{
		VarRoot:     root,
		VarArchives: filepath.Join(root, ArchivesDirName),
		VarState:    filepath.Join(root, StateDirName),
	}
	global := newScope(resolveVars(m.Vars, builtins, errs))

	tools, path := m.Tools, m.Path
	if overlay != nil {
		tools, path = overlay.apply(tools, path)
	}

	cfg := &Config{
		root:  root,
		tools: make(map[string]string, len(tools)),
	}
	for _, name := range sortedKeys(tools) {
		cfg.tools[name] = r.expand(global, fieldPath("tools", name), tools[name])
	}
	for i, entry := range path {
		cfg.path = append(cfg.path, absPath(baseDir, r.expand(global, fieldPath("path", i), entry)))
	}
	if m.EnvFile != "" {
		cfg.envFile = absPath(baseDir, r.expand(global, "env_file", m.EnvFile))
	}
	if m.Mirror != nil {
		cfg.mirror = Mirror{
			Endpoint: r.expand(global, "mirror.endpoint", m.Mirror.Endpoint),
			Region:   r.expand(global, "mirror.region", m.Mirror.Region),
			UseSSL:   m.Mirror.UseSSL == nil || *m.Mirror.UseSSL,
		}
	}

	seen := make(map[string]string)
	for i, spec := range m.Steps {
		field := fieldPath("steps", i)
		for _, combo := range combinations(spec.Matrix) {
			step, ok := r.step(global.with(combo), field, spec, combo)
			if !ok {
				continue
			}
			if first, dup := seen[step.ID]; dup {
				errs.Add(duplicateStepError(field, step.ID, first))
				continue
			}
			seen[step.ID] = field
			cfg.steps = append(cfg.steps, step)
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return cfg, nil
}

type resolver struct {
	errs *ErrorList
}

// expand expands src and records any problem against field.
func (r *resolver) expand(sc *scope, field, src string) string {
	out, err := sc.expand(src)
	if err != nil {
		r.errs.AddValidation(field, err.Error(), "Check the ${name} syntax.")
	}
	r.reportMissing(sc, field)
	return out
}

func (r *resolver) fields(sc *scope, field, src string) []string {
	out, err := sc.fields(src)
	if err != nil {
		r.errs.AddValidation(field, err.Error(), "Check quoting and ${name} syntax in the command line.")
	}
	r.reportMissing(sc, field)
	return out
}

func (r *resolver) reportMissing(sc *scope, field string) {
	reported := make(map[string]bool)
	for _, name := range sc.takeMissing() {
		if !reported[name] {
			reported[name] = true
			r.errs.Add(NewUndefinedVariableError(field, name))
		}
	}
}

// step expands one matrix combination of a step. If the name does not
// reference any matrix key, the combination's values are appended to it.
func (r *resolver) step(sc *scope, field string, spec StepSpec, combo map[string]string) (Step, bool) {
	sc.resetUsed()
	name := r.expand(sc, field+".name", spec.Name)

	if len(combo) > 0 && !referencesAny(sc.used, combo) {
		name += "-" + matrixSuffix(combo)
	}

	id, err := pipeline.NewStepID(name)
	if err != nil {
		r.errs.AddValidation(field+".name", fmt.Sprintf("invalid step id %q: %v", name, err),
			"Step ids name marker files; use letters, digits, '.', '-' and '_'.")
		return Step{}, false
	}

	step := Step{
		ID:          id.String(),
		Description: r.expand(sc, field+".description", spec.Description),
		Always:      spec.Always,
		Actions:     r.actions(sc, field+".actions", spec.Actions),
	}
	return step, true
}

func (r *resolver) actions(sc *scope, field string, specs []ActionSpec) []Action {
	actions := make([]Action, 0, len(specs))
	for i, spec := range specs {
		actions = append(actions, r.action(sc, fieldPath(field, i), spec))
	}
	return actions
}

func (r *resolver) action(sc *scope, field string, spec ActionSpec) Action {
	kind := spec.kinds()[0]
	a := Action{Kind: kind}

	switch kind {
	case ActionFetch:
		a.URL = r.expand(sc, field+".fetch", spec.Fetch)
		a.Name = r.expand(sc, field+".as", spec.As)
	case ActionExtract:
		a.Archive = r.expand(sc, field+".extract", spec.Extract)
		a.Into = r.expand(sc, field+".into", spec.Into)
	case ActionRun:
		a.Args = r.fields(sc, field+".run", spec.Run)
		if len(a.Args) == 0 {
			r.errs.AddValidation(field+".run", "command line is empty", "")
		}
	case ActionRemove:
		a.Path = r.expand(sc, field+".remove", spec.Remove)
	case ActionMkdir:
		a.Path = r.expand(sc, field+".mkdir", spec.Mkdir)
	case ActionCopy:
		a.From, a.To = r.pair(sc, field+".copy", spec.Copy)
	case ActionCopyTree:
		a.From, a.To = r.pair(sc, field+".copy_tree", spec.CopyTree)
	case ActionRename:
		a.From, a.To = r.pair(sc, field+".rename", spec.Rename)
	case ActionDir:
		a.Path = r.expand(sc, field+".dir", spec.Dir)
		a.Actions = r.actions(sc, field+".actions", spec.Actions)
	}
	return a
}

func (r *resolver) pair(sc *scope, field string, p *PathPair) (string, string) {
	return r.expand(sc, field+".from", p.From), r.expand(sc, field+".to", p.To)
}

func referencesAny(used map[string]bool, combo map[string]string) bool {
	for k := range combo {
		if used[k] {
			return true
		}
	}
	return false
}

func absPath(baseDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
