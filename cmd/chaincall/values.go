package main

import (
	"strings"

	"github.com/wippyai/chaincall/metadata"
)

// A step is one prompt in the parameter walk. Text steps take a literal;
// select steps choose a variant arm or whether to fill an optional.
type step struct {
	param   metadata.Param
	path    string
	kind    stepKind
	options []string
}

type stepKind int

const (
	stepText stepKind = iota
	stepSelect
)

const (
	optionSome = "Some"
	optionNone = "None"
)

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// expandParam turns one parameter into its prompt steps. Composites expand
// in place; variants and optionals become select steps whose outcome drives
// further expansion through expandChoice.
func expandParam(p metadata.Param, parent string) []step {
	path := joinPath(parent, p.Name)

	if p.IsOptional {
		return []step{{param: p, path: path, kind: stepSelect,
			options: []string{optionSome, optionNone}}}
	}
	if p.IsVariant {
		arms := make([]string, len(p.SubParams))
		for i, arm := range p.SubParams {
			arms[i] = arm.Name
		}
		return []step{{param: p, path: path, kind: stepSelect, options: arms}}
	}
	if len(p.SubParams) > 0 {
		var steps []step
		for _, field := range p.SubParams {
			steps = append(steps, expandParam(field, path)...)
		}
		return steps
	}
	return []step{{param: p, path: path, kind: stepText}}
}

// expandChoice returns the follow-up steps after a select step resolves.
func expandChoice(s step, choice string) []step {
	if s.param.IsOptional {
		if choice == optionNone {
			return nil
		}
		inner := s.param
		inner.IsOptional = false
		if len(inner.SubParams) == 0 {
			// The filled value lands on the optional's own path.
			return []step{{param: inner, path: s.path, kind: stepText}}
		}
		var steps []step
		for _, field := range inner.SubParams {
			steps = append(steps, expandParam(field, s.path)...)
		}
		return steps
	}
	for _, arm := range s.param.SubParams {
		if arm.Name != choice {
			continue
		}
		var steps []step
		for _, field := range arm.SubParams {
			steps = append(steps, expandParam(field, joinPath(s.path, choice))...)
		}
		return steps
	}
	return nil
}

// argValues accumulates the walk's answers, keyed by dotted path.
type argValues struct {
	texts   map[string]string
	choices map[string]string
}

func newArgValues() *argValues {
	return &argValues{
		texts:   make(map[string]string),
		choices: make(map[string]string),
	}
}

// render formats one top-level parameter from the collected answers.
func (v *argValues) render(p metadata.Param, parent string) string {
	path := joinPath(parent, p.Name)

	if p.IsOptional {
		if v.choices[path] == optionNone {
			return optionNone
		}
		inner := p
		inner.IsOptional = false
		return optionSome + "(" + v.renderAt(inner, path) + ")"
	}
	return v.renderAt(p, path)
}

// renderAt formats a non-optional parameter whose value lives at path.
func (v *argValues) renderAt(p metadata.Param, path string) string {
	if p.IsVariant {
		arm := v.choices[path]
		for _, armParam := range p.SubParams {
			if armParam.Name != arm {
				continue
			}
			fields := armParam.SubParams
			if len(fields) == 0 {
				return arm
			}
			parts := make([]string, len(fields))
			for i, field := range fields {
				parts[i] = v.render(field, joinPath(path, arm))
			}
			return arm + "(" + strings.Join(parts, ", ") + ")"
		}
		return arm
	}
	if len(p.SubParams) > 0 {
		parts := make([]string, len(p.SubParams))
		for i, field := range p.SubParams {
			parts[i] = v.render(field, path)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return v.texts[path]
}
