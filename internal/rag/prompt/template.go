// Package prompt renders chat templates into message lists.
//
// A template is an ordered list of parts. A message part holds a role and a
// text with {name} placeholders, "{{" and "}}" render as literal braces. A
// history part injects a []commonModels.Message supplied under its name.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing template variable %q", e.Name)
}

func (e *MissingVariableError) Unwrap() error { return apperrors.ErrMissingVariable }

var ErrNotMessages = errors.New("placeholder value is not a message list")

type Part struct {
	Role commonModels.Role
	Text string
	// History is set for message-list placeholders; Role and Text are unused then.
	History string
}

func System(text string) Part    { return Part{Role: commonModels.RoleSystem, Text: text} }
func Human(text string) Part     { return Part{Role: commonModels.RoleUser, Text: text} }
func Assistant(text string) Part { return Part{Role: commonModels.RoleAssistant, Text: text} }

func MessagesPlaceholder(name string) Part { return Part{History: name} }

type Template struct {
	parts []Part
}

func New(parts ...Part) Template {
	return Template{parts: append([]Part(nil), parts...)}
}

// FromMessages builds a template whose parts are fixed role/text pairs.
func FromMessages(pairs ...[2]string) Template {
	parts := make([]Part, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, Part{Role: parseRole(p[0]), Text: p[1]})
	}
	return Template{parts: parts}
}

func parseRole(name string) commonModels.Role {
	switch strings.ToLower(name) {
	case "human", "user":
		return commonModels.RoleUser
	case "ai", "assistant":
		return commonModels.RoleAssistant
	default:
		return commonModels.RoleSystem
	}
}

func (t Template) Compose(vars map[string]any) ([]commonModels.Message, error) {
	out := make([]commonModels.Message, 0, len(t.parts))
	for _, p := range t.parts {
		if p.History != "" {
			v, ok := vars[p.History]
			if !ok {
				return nil, &MissingVariableError{Name: p.History}
			}
			msgs, ok := v.([]commonModels.Message)
			if !ok && v != nil {
				return nil, fmt.Errorf("%s: %w (got %T)", p.History, ErrNotMessages, v)
			}
			out = append(out, msgs...)
			continue
		}

		text, err := Format(p.Text, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, commonModels.Message{Role: p.Role, Content: text})
	}
	return out, nil
}

// Compose is Template.Compose as a free function.
func Compose(t Template, vars map[string]any) ([]commonModels.Message, error) {
	return t.Compose(vars)
}

// Variables lists every name the template needs, in first-use order.
func (t Template) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, p := range t.parts {
		if p.History != "" {
			add(p.History)
			continue
		}
		scan(p.Text, func(lit string) {}, func(name string) { add(name) })
	}
	return names
}

// Format substitutes {name} placeholders in a single string.
func Format(text string, vars map[string]any) (string, error) {
	var b strings.Builder
	var missing string
	scan(text,
		func(lit string) { b.WriteString(lit) },
		func(name string) {
			v, ok := vars[name]
			if !ok {
				if missing == "" {
					missing = name
				}
				return
			}
			b.WriteString(fmt.Sprint(v))
		})
	if missing != "" {
		return "", &MissingVariableError{Name: missing}
	}
	return b.String(), nil
}

// scan walks text, emitting literal runs and placeholder names. Braces that
// do not enclose a valid identifier are kept as literal text.
func scan(text string, literal func(string), placeholder func(string)) {
	i := 0
	start := 0
	for i < len(text) {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal(text[start:i] + "{")
				i += 2
				start = i
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				i++
				continue
			}
			name := text[i+1 : i+1+end]
			if !isIdent(name) {
				i++
				continue
			}
			literal(text[start:i])
			placeholder(name)
			i += end + 2
			start = i
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal(text[start:i] + "}")
				i += 2
				start = i
				continue
			}
			i++
		default:
			i++
		}
	}
	literal(text[start:])
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
