package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plugin is one configured plugin: a name plus an arbitrary option map.
// Typed option accessors live below; options are validated against the
// per-plugin allowed key set so typos fail loudly.
type Plugin struct {
	Name    string
	Options map[string]interface{}
}

// PluginList decodes the loose plugin list form: entries are either a bare
// name or a single-key map of name to options.
type PluginList []Plugin

// Plugin names recognized by the toolchain, with their allowed option keys.
var knownPlugins = map[string]map[string]bool{
	"search": {
		"lang":           true,
		"min_length":     true,
		"prebuild_index": true,
	},
	"notebooks": {
		"include_source": true,
		"kernel_name":    true,
	},
	"apidoc": {
		"packages":                true,
		"heading_level":           true,
		"show_source":             true,
		"docstring_section_style": true,
		"members_order":           true,
	},
}

// UnmarshalYAML accepts "name" or "name: {options}".
func (p *Plugin) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&p.Name)
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("plugin entry must have exactly one name key")
		}
		if err := value.Content[0].Decode(&p.Name); err != nil {
			return fmt.Errorf("plugin name: %w", err)
		}
		if value.Content[1].Kind == yaml.ScalarNode && value.Content[1].Tag == "!!null" {
			return nil
		}
		if err := value.Content[1].Decode(&p.Options); err != nil {
			return fmt.Errorf("plugin %q options: %w", p.Name, err)
		}
		return nil
	default:
		return fmt.Errorf("plugin entry must be a name or a single-key map")
	}
}

// MarshalYAML round-trips the loose form.
func (p Plugin) MarshalYAML() (interface{}, error) {
	if len(p.Options) == 0 {
		return p.Name, nil
	}
	return map[string]map[string]interface{}{p.Name: p.Options}, nil
}

// Get returns the plugin with the given name, if configured.
func (pl PluginList) Get(name string) (Plugin, bool) {
	for _, p := range pl {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}

// Has reports whether a plugin is configured.
func (pl PluginList) Has(name string) bool {
	_, ok := pl.Get(name)
	return ok
}

// validate rejects unknown plugin names and unknown option keys.
func (pl PluginList) validate() (faults, warnings []string) {
	seen := make(map[string]bool)
	for _, p := range pl {
		allowed, known := knownPlugins[p.Name]
		if !known {
			faults = append(faults, fmt.Sprintf("unknown plugin %q (recognized: %s)", p.Name, knownPluginNames()))
			continue
		}
		if seen[p.Name] {
			faults = append(faults, fmt.Sprintf("plugin %q configured more than once", p.Name))
		}
		seen[p.Name] = true
		for key := range p.Options {
			if !allowed[key] {
				faults = append(faults, fmt.Sprintf("plugin %q: unknown option %q", p.Name, key))
			}
		}
	}
	return faults, warnings
}

func knownPluginNames() string {
	names := make([]string, 0, len(knownPlugins))
	for name := range knownPlugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// decodeOptions re-marshals the option map into a typed struct.
func decodeOptions(options map[string]interface{}, out interface{}) error {
	if len(options) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(options)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}

// SearchOptions are the options of the search plugin.
type SearchOptions struct {
	Lang          string `yaml:"lang"`
	MinLength     int    `yaml:"min_length"`
	PrebuildIndex bool   `yaml:"prebuild_index"`
}

// SearchOptions returns the search plugin options with defaults applied,
// and whether the plugin is enabled at all.
func (pl PluginList) SearchOptions() (SearchOptions, bool, error) {
	opts := SearchOptions{Lang: "en", MinLength: 3}
	p, ok := pl.Get("search")
	if !ok {
		return opts, false, nil
	}
	if err := decodeOptions(p.Options, &opts); err != nil {
		return opts, true, fmt.Errorf("search plugin options: %w", err)
	}
	return opts, true, nil
}

// NotebookOptions are the options of the notebooks plugin.
type NotebookOptions struct {
	IncludeSource bool   `yaml:"include_source"`
	KernelName    string `yaml:"kernel_name"`
}

// NotebookOptions returns the notebooks plugin options with defaults
// applied, and whether the plugin is enabled.
func (pl PluginList) NotebookOptions() (NotebookOptions, bool, error) {
	opts := NotebookOptions{IncludeSource: true}
	p, ok := pl.Get("notebooks")
	if !ok {
		return opts, false, nil
	}
	if err := decodeOptions(p.Options, &opts); err != nil {
		return opts, true, fmt.Errorf("notebooks plugin options: %w", err)
	}
	return opts, true, nil
}

// APIDocOptions are the options of the apidoc plugin.
type APIDocOptions struct {
	Packages     []string `yaml:"packages"`
	HeadingLevel int      `yaml:"heading_level"`
	ShowSource   bool     `yaml:"show_source"`
	SectionStyle string   `yaml:"docstring_section_style"`
	MembersOrder string   `yaml:"members_order"`
}

// APIDocOptions returns the apidoc plugin options with defaults applied,
// and whether the plugin is enabled.
func (pl PluginList) APIDocOptions() (APIDocOptions, bool, error) {
	opts := APIDocOptions{HeadingLevel: 2, ShowSource: true, SectionStyle: "table", MembersOrder: "source"}
	p, ok := pl.Get("apidoc")
	if !ok {
		return opts, false, nil
	}
	if err := decodeOptions(p.Options, &opts); err != nil {
		return opts, true, fmt.Errorf("apidoc plugin options: %w", err)
	}
	if opts.MembersOrder != "source" && opts.MembersOrder != "alphabetical" {
		return opts, true, fmt.Errorf("apidoc plugin: members_order must be source or alphabetical, got %q", opts.MembersOrder)
	}
	if opts.SectionStyle != "table" && opts.SectionStyle != "list" {
		return opts, true, fmt.Errorf("apidoc plugin: docstring_section_style must be table or list, got %q", opts.SectionStyle)
	}
	return opts, true, nil
}
