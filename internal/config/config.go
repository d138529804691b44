// Package config provides configuration management for the Explorer 2
// plugin: compiled-in defaults, recursive merging of the user-supplied
// section over them, and validation of the configured base URL.
package config

import (
	"fmt"
	"strings"

	"github.com/dicomtools/go-explorer2/internal/assets"
)

// SectionName is the host configuration section read by the plugin.
const SectionName = "Explorer2"

// Settings is the effective plugin configuration, built once at startup and
// immutable afterwards.
type Settings struct {
	Enable                 bool
	Root                   string
	ReplaceDefaultExplorer bool

	// UiOptions is passed through verbatim to the frontend.
	UiOptions map[string]any
}

// Defaults returns the compiled-in default configuration for the plugin
// section, parsed fresh on every call so callers may mutate the result.
func Defaults() (map[string]any, error) {
	raw := assets.FileResource(assets.DefaultConfiguration)

	var doc map[string]any
	if err := UnmarshalJSONC(raw, &doc); err != nil {
		return nil, fmt.Errorf("embedded default configuration: %w", err)
	}

	section, ok := doc[SectionName].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("embedded default configuration: missing %q section", SectionName)
	}
	return section, nil
}

// Merge merges source into target in place. Keys whose values are objects on
// both sides merge recursively; any other pairing overwrites target's value
// with source's, including arrays and scalars. Non-object inputs are a no-op.
func Merge(target, source map[string]any) {
	if target == nil || source == nil {
		return
	}
	for key, sv := range source {
		tm, tok := target[key].(map[string]any)
		sm, sok := sv.(map[string]any)
		if tok && sok {
			Merge(tm, sm)
			continue
		}
		target[key] = sv
	}
}

// Load builds the effective settings by merging the user section (may be
// nil) over the compiled-in defaults. Root is not validated here; see
// ValidateRoot.
func Load(userSection map[string]any) (*Settings, error) {
	merged, err := Defaults()
	if err != nil {
		return nil, err
	}
	Merge(merged, userSection)

	s := &Settings{
		UiOptions: map[string]any{},
	}
	if v, ok := merged["Enable"].(bool); ok {
		s.Enable = v
	}
	if v, ok := merged["Root"].(string); ok {
		s.Root = v
	}
	if v, ok := merged["ReplaceDefaultExplorer"].(bool); ok {
		s.ReplaceDefaultExplorer = v
	}
	if v, ok := merged["UiOptions"].(map[string]any); ok {
		s.UiOptions = v
	}
	return s, nil
}

// ValidateRoot checks the configured base URL: it must start and end with a
// path separator ("/ui/" is valid, "ui/", "/ui" and "" are not).
func ValidateRoot(root string) error {
	if len(root) < 1 || !strings.HasPrefix(root, "/") || !strings.HasSuffix(root, "/") {
		return fmt.Errorf("'Root' configuration shall start with a '/' and end with a '/': %q", root)
	}
	return nil
}
