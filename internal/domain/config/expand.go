package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// scope resolves ${name} references: explicit values first, then the
// process environment. Names found in neither are recorded as missing.
type scope struct {
	values  map[string]string
	missing []string
	used    map[string]bool
}

func newScope(values map[string]string) *scope {
	return &scope{values: values, used: make(map[string]bool)}
}

// with returns a child scope with extra values layered on top.
func (s *scope) with(extra map[string]string) *scope {
	merged := make(map[string]string, len(s.values)+len(extra))
	for k, v := range s.values {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return newScope(merged)
}

func (s *scope) lookup(name string) string {
	s.used[name] = true
	if v, ok := s.values[name]; ok {
		return v
	}
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	// IFS is consulted by field splitting and is unset in most environments.
	if name != "IFS" {
		s.missing = append(s.missing, name)
	}
	return ""
}

// takeMissing returns and clears the names recorded as missing.
func (s *scope) takeMissing() []string {
	m := s.missing
	s.missing = nil
	return m
}

// resetUsed clears the record of referenced names.
func (s *scope) resetUsed() {
	s.used = make(map[string]bool)
}

// expand expands a single value as if it were inside double quotes, so
// whitespace and backslashes are kept.
func (s *scope) expand(src string) (string, error) {
	if !strings.Contains(src, "$") {
		return src, nil
	}
	return shell.Expand(src, s.lookup)
}

// fields splits a command line into words the way a POSIX shell would,
// with quoting and ${name} expansion. Globbing is disabled because the
// line is split long before the command runs in its working directory.
func (s *scope) fields(src string) ([]string, error) {
	var words []*syntax.Word
	err := syntax.NewParser().Words(strings.NewReader(src), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, err
	}
	cfg := &expand.Config{Env: expand.FuncEnviron(s.lookup)}
	return expand.Fields(cfg, words...)
}

// resolveVars expands user variables, which may reference built-ins, the
// environment and each other. Reference cycles are reported.
func resolveVars(raw map[string]string, builtins map[string]string, errs *ErrorList) map[string]string {
	out := make(map[string]string, len(raw)+len(builtins))
	for k, v := range builtins {
		out[k] = v
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(raw))

	cycle := func(name string) {
		errs.AddValidation("vars."+name, "variable reference cycle", "Remove the reference cycle between vars.")
	}

	var visit func(name string)
	visit = func(name string) {
		if state[name] == done {
			return
		}
		state[name] = visiting

		lookup := func(ref string) string {
			if _, ok := raw[ref]; ok {
				if state[ref] == visiting {
					cycle(name)
					return ""
				}
				visit(ref)
				return out[ref]
			}
			if v, ok := out[ref]; ok {
				return v
			}
			if v, ok := os.LookupEnv(ref); ok {
				return v
			}
			if ref != "IFS" {
				errs.Add(NewUndefinedVariableError("vars."+name, ref))
			}
			return ""
		}

		value := raw[name]
		if strings.Contains(value, "$") {
			expanded, err := shell.Expand(value, lookup)
			if err != nil {
				errs.AddValidation("vars."+name, err.Error(), "Check the ${name} syntax.")
			}
			value = expanded
		}
		out[name] = value
		state[name] = done
	}

	for _, name := range sortedKeys(raw) {
		visit(name)
	}
	return out
}

// combinations unrolls a matrix into every combination of its values,
// iterating keys in sorted order with the last key varying fastest.
func combinations(matrix map[string][]string) []map[string]string {
	if len(matrix) == 0 {
		return []map[string]string{{}}
	}

	keys := sortedKeys(matrix)
	combos := []map[string]string{{}}
	for _, key := range keys {
		next := make([]map[string]string, 0, len(combos)*len(matrix[key]))
		for _, combo := range combos {
			for _, value := range matrix[key] {
				c := make(map[string]string, len(combo)+1)
				for k, v := range combo {
					c[k] = v
				}
				c[key] = value
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// matrixSuffix joins a combination's values in sorted key order.
func matrixSuffix(combo map[string]string) string {
	parts := make([]string, 0, len(combo))
	for _, k := range sortedKeys(combo) {
		parts = append(parts, combo[k])
	}
	return strings.Join(parts, "-")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldPath(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}
