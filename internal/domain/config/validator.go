package config

import (
	"fmt"
	"strings"
)

var reservedVars = map[string]bool{
	VarRoot:     true,
	VarArchives: true,
	VarState:    true,
}

var allKinds = []ActionKind{
	ActionFetch, ActionExtract, ActionRun, ActionRemove, ActionMkdir,
	ActionCopy, ActionCopyTree, ActionRename, ActionDir,
}

// Validator checks the structure of a manifest before it is resolved.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every structural problem found in m. The list is empty
// when the manifest is well formed.
func (v *Validator) Validate(m *Manifest) *ErrorList {
	errs := NewErrorList()

	if strings.TrimSpace(m.Root) == "" {
		errs.AddValidation("root", "root directory is required",
			"Set root to the directory that will hold archives/ and state/.")
	}

	for _, name := range sortedKeys(m.Vars) {
		if reservedVars[name] {
			errs.AddValidation(fieldPath("vars", name), "name is reserved",
				"root, archives and state are built in; pick another name.")
		}
	}

	for _, name := range sortedKeys(m.Tools) {
		if strings.TrimSpace(m.Tools[name]) == "" {
			errs.AddValidation(fieldPath("tools", name), "executable path is empty",
				"Remove the entry to look the tool up on PATH.")
		}
	}

	if m.Mirror != nil && strings.TrimSpace(m.Mirror.Endpoint) == "" {
		errs.AddValidation("mirror.endpoint", "endpoint is required when mirror is set",
			"Set the S3 endpoint host, e.g. s3.amazonaws.com, or remove the mirror section.")
	}

	if len(m.Steps) == 0 {
		errs.AddValidation("steps", "at least one step is required", "")
	}

	for i, step := range m.Steps {
		v.validateStep(errs, fieldPath("steps", i), step)
	}

	return errs
}

func (v *Validator) validateStep(errs *ErrorList, field string, step StepSpec) {
	if strings.TrimSpace(step.Name) == "" {
		errs.AddValidation(field+".name", "name is required",
			"The name identifies the step's completion marker.")
	}

	for _, key := range sortedKeys(step.Matrix) {
		if reservedVars[key] {
			errs.AddValidation(fieldPath(field, "matrix", key), "name is reserved",
				"root, archives and state are built in; pick another name.")
		}
		if len(step.Matrix[key]) == 0 {
			errs.AddValidation(fieldPath(field, "matrix", key), "no values", "List at least one value.")
		}
	}

	if len(step.Actions) == 0 {
		errs.AddValidation(field+".actions", "a step needs at least one action", "")
	}
	v.validateActions(errs, field+".actions", step.Actions)
}

func (v *Validator) validateActions(errs *ErrorList, field string, actions []ActionSpec) {
	for i, a := range actions {
		v.validateAction(errs, fieldPath(field, i), a)
	}
}

func (v *Validator) validateAction(errs *ErrorList, field string, a ActionSpec) {
	kinds := a.kinds()
	switch len(kinds) {
	case 0:
		errs.AddValidation(field, "no action set", "Use one of: "+joinKinds(allKinds)+".")
		return
	case 1:
	default:
		errs.AddValidation(field, "more than one action set: "+joinKinds(kinds),
			"Split them into separate list entries.")
		return
	}

	kind := kinds[0]
	if a.As != "" && kind != ActionFetch {
		errs.AddValidation(field+".as", "as only applies to fetch", "")
	}
	if kind == ActionFetch && !isBareFileName(a.As) {
		errs.AddValidation(field+".as", fmt.Sprintf("%q is not a bare file name", a.As),
			"Archives are saved directly in the archives directory; drop the directory part.")
	}
	if a.Into != "" && kind != ActionExtract {
		errs.AddValidation(field+".into", "into only applies to extract", "")
	}
	if len(a.Actions) > 0 && kind != ActionDir {
		errs.AddValidation(field+".actions", "nested actions only apply to dir", "")
	}

	switch kind {
	case ActionDir:
		if len(a.Actions) == 0 {
			errs.AddValidation(field+".actions", "dir needs nested actions",
				"List the actions to run inside the directory under actions.")
		}
		v.validateActions(errs, field+".actions", a.Actions)
	case ActionCopy:
		v.validatePair(errs, field+".copy", a.Copy)
	case ActionCopyTree:
		v.validatePair(errs, field+".copy_tree", a.CopyTree)
	case ActionRename:
		v.validatePair(errs, field+".rename", a.Rename)
	}
}

func (v *Validator) validatePair(errs *ErrorList, field string, p *PathPair) {
	if p.From == "" {
		errs.AddValidation(field+".from", "source path is required", "")
	}
	if p.To == "" {
		errs.AddValidation(field+".to", "destination path is required", "")
	}
}

func joinKinds(kinds []ActionKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// duplicateStepError reports two steps that expand to the same ID.
func duplicateStepError(field, id, first string) *UserError {
	return &UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: duplicate step id %q", field, id),
		Context:    field,
		Suggestion: fmt.Sprintf("%q is already declared at %s; step names must be unique after matrix expansion.", id, first),
	}
}

// isBareFileName reports whether name can only refer to an entry directly
// inside a directory. An empty name is allowed and means the URL's last
// segment.
func isBareFileName(name string) bool {
	if name == "" {
		return true
	}
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
