package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Extension is one configured markdown extension: a name plus options.
type Extension struct {
	Name    string
	Options map[string]interface{}
}

// ExtensionList decodes the loose markdown_extensions form: entries are a
// bare name or a single-key map of name to options.
type ExtensionList []Extension

// Extension names the renderer understands. Unknown names are warnings, not
// errors: configs written for other generators commonly carry extensions we
// render as plain markdown.
var knownExtensions = map[string]bool{
	"admonition":  true,
	"footnotes":   true,
	"tables":      true,
	"attr_list":   true,
	"def_list":    true,
	"tasklist":    true,
	"tabbed":      true,
	"toc":         true,
	"arithmatex":  true,
	"highlight":   true,
	"superfences": true,
}

// UnmarshalYAML accepts "name" or "name: {options}".
func (e *Extension) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&e.Name)
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("markdown extension entry must have exactly one name key")
		}
		if err := value.Content[0].Decode(&e.Name); err != nil {
			return fmt.Errorf("markdown extension name: %w", err)
		}
		if value.Content[1].Kind == yaml.ScalarNode && value.Content[1].Tag == "!!null" {
			return nil
		}
		if err := value.Content[1].Decode(&e.Options); err != nil {
			return fmt.Errorf("markdown extension %q options: %w", e.Name, err)
		}
		return nil
	default:
		return fmt.Errorf("markdown extension entry must be a name or a single-key map")
	}
}

// MarshalYAML round-trips the loose form.
func (e Extension) MarshalYAML() (interface{}, error) {
	if len(e.Options) == 0 {
		return e.Name, nil
	}
	return map[string]map[string]interface{}{e.Name: e.Options}, nil
}

// Enabled reports whether an extension is configured.
func (el ExtensionList) Enabled(name string) bool {
	_, ok := el.Get(name)
	return ok
}

// Get returns the extension with the given name, if configured.
func (el ExtensionList) Get(name string) (Extension, bool) {
	for _, e := range el {
		if e.Name == name {
			return e, true
		}
	}
	return Extension{}, false
}

// BoolOption returns a boolean extension option, or def when absent.
func (el ExtensionList) BoolOption(ext, key string, def bool) bool {
	e, ok := el.Get(ext)
	if !ok {
		return def
	}
	if v, ok := e.Options[key].(bool); ok {
		return v
	}
	return def
}

// IntOption returns an integer extension option, or def when absent.
func (el ExtensionList) IntOption(ext, key string, def int) int {
	e, ok := el.Get(ext)
	if !ok {
		return def
	}
	if v, ok := e.Options[key].(int); ok {
		return v
	}
	return def
}

// validate warns about extension names the renderer does not understand.
func (el ExtensionList) validate() (warnings []string) {
	for _, e := range el {
		if !knownExtensions[e.Name] {
			warnings = append(warnings, fmt.Sprintf("unknown markdown extension %q will be ignored", e.Name))
		}
	}
	return warnings
}
