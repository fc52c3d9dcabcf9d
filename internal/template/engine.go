// Package template maps named notification types to channel-specific
// message patterns and renders them against a data record.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// Template is one named notification type. Patterns use {field}
// placeholders. A channel with an empty pattern is unsupported for that
// template.
type Template struct {
	Name         string
	SMS          string
	EmailSubject string
	EmailBody    string
}

// Rendered is the channel-specific output of one Render call.
type Rendered struct {
	Text    string
	Subject string
}

// Engine holds the template table. Loaded once, never mutated at runtime;
// rendering is pure, so concurrent use needs no locking.
type Engine struct {
	templates map[string]Template
}

func NewEngine(templates []Template) (*Engine, error) {
	table := make(map[string]Template, len(templates))
	for _, tpl := range templates {
		name := strings.TrimSpace(tpl.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: template name is required", domain.ErrValidation)
		}
		if _, exists := table[name]; exists {
			return nil, fmt.Errorf("%w: duplicate template %q", domain.ErrValidation, name)
		}
		tpl.Name = name
		table[name] = tpl
	}

	return &Engine{templates: table}, nil
}

// Render substitutes data into the named template's pattern for the
// requested channel. Every {field} missing from data resolves to the
// empty string, and any residual {...} token is removed, so partially
// filled data degrades to a shorter message instead of failing the send.
func (e *Engine) Render(name string, channel domain.Channel, data map[string]any) (*Rendered, error) {
	if e == nil {
		return nil, fmt.Errorf("template engine is not initialized")
	}

	tpl, ok := e.templates[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, name)
	}

	switch channel {
	case domain.ChannelSMS:
		if tpl.SMS == "" {
			return nil, fmt.Errorf("%w: template %q has no sms pattern", domain.ErrValidation, name)
		}
		return &Rendered{Text: substitute(tpl.SMS, data)}, nil
	case domain.ChannelEmail:
		if tpl.EmailSubject == "" && tpl.EmailBody == "" {
			return nil, fmt.Errorf("%w: template %q has no email patterns", domain.ErrValidation, name)
		}
		return &Rendered{
			Subject: substitute(tpl.EmailSubject, data),
			Text:    substitute(tpl.EmailBody, data),
		}, nil
	default:
		return nil, fmt.Errorf("%w: invalid channel %q", domain.ErrValidation, channel)
	}
}

// Names lists the registered template names, sorted.
func (e *Engine) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

func substitute(pattern string, data map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(pattern, func(token string) string {
		key := token[1 : len(token)-1]
		value, ok := data[key]
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprint(value)
	})
}
