package explorer

import (
	"log"
	"strings"
)

// Whether a companion plugin is "enabled" for UI purposes cannot be read
// from the registry alone: a loaded plugin may still be inert because its
// configuration section is absent or switched off. The table below maps each
// known plugin name to the rule deciding its flag; plugins the host loaded
// but the table does not know are assumed enabled.

type ruleKind int

const (
	// alwaysEnabled: loaded means enabled.
	alwaysEnabled ruleKind = iota
	// sectionPresent: enabled iff the configuration section exists.
	sectionPresent
	// sectionKeyTruthy: enabled iff the section exists and the key holds a
	// true boolean, non-empty string or non-zero number.
	sectionKeyTruthy
	// sectionHasKey: enabled iff the section exists and contains the key,
	// whatever its value.
	sectionHasKey
)

type enablementRule struct {
	kind    ruleKind
	section string
	key     string
}

// defaultExplorerPlugin is the host's bundled legacy UI. It shows up in the
// registry but is not a companion plugin, so it is skipped.
const defaultExplorerPlugin = "explorer.js"

var enablementRules = map[string]enablementRule{
	"authorization":       {kind: sectionHasKey, section: "Authorization", key: "WebService"},
	"connectivity-checks": {kind: alwaysEnabled},
	"dicom-web":           {kind: sectionKeyTruthy, section: "DicomWeb", key: "Enable"},
	"gdcm":                {kind: sectionKeyTruthy, section: "Gdcm", key: "Enable"},
	"mysql-index":         {kind: sectionKeyTruthy, section: "MySQL", key: "EnableIndex"},
	"mysql-storage":       {kind: sectionKeyTruthy, section: "MySQL", key: "EnableStorage"},
	"odbc-index":          {kind: sectionKeyTruthy, section: "Odbc", key: "EnableIndex"},
	"odbc-storage":        {kind: sectionKeyTruthy, section: "Odbc", key: "EnableStorage"},
	"osimis-web-viewer":   {kind: sectionPresent, section: "WebViewer"},
	"postgresql-index":    {kind: sectionKeyTruthy, section: "PostgreSQL", key: "EnableIndex"},
	"postgresql-storage":  {kind: sectionKeyTruthy, section: "PostgreSQL", key: "EnableStorage"},
	"python":              {kind: sectionPresent, section: "PythonScript"},
	"serve-folders":       {kind: sectionPresent, section: "ServeFolders"},
	"stone-webviewer":     {kind: sectionPresent, section: "StoneWebViewer"},
	"tcia":                {kind: sectionKeyTruthy, section: "Tcia", key: "Enable"},
	"transfers":           {kind: alwaysEnabled},
	"web-viewer":          {kind: alwaysEnabled},
	"worklists":           {kind: sectionKeyTruthy, section: "Worklists", key: "Enable"},
	"wsi":                 {kind: alwaysEnabled},
}

// pluginsConfiguration builds the per-plugin record map served by the
// configuration endpoint. Host query failures degrade to missing records or
// a disabled flag; this never fails the response.
func (p *Plugin) pluginsConfiguration() map[string]any {
	result := map[string]any{}

	names, err := p.host.Plugins().List()
	if err != nil {
		log.Printf("Explorer 2: listing plugins: %v", err)
		return result
	}

	// Registry RootUri values are relative to the host's own UI mount
	// point, one level per segment of this plugin's base URL above it.
	prefix := parentPrefix(p.baseURL)

	for _, name := range names {
		if name == defaultExplorerPlugin {
			continue
		}

		info, err := p.host.Plugins().Info(name)
		if err != nil || info == nil {
			info = map[string]any{}
		}

		record := make(map[string]any, len(info)+1)
		for k, v := range info {
			record[k] = v
		}
		if uri, ok := record["RootUri"].(string); ok && uri != "" {
			record["RootUri"] = prefix + uri
		}
		record["Enabled"] = p.pluginEnabled(name)
		result[name] = record
	}
	return result
}

func (p *Plugin) pluginEnabled(name string) bool {
	rule, known := enablementRules[name]
	if !known {
		// The host loaded it and we know nothing more: assume enabled.
		return true
	}

	cfg := p.host.Configuration()
	switch rule.kind {
	case alwaysEnabled:
		return true
	case sectionPresent:
		return cfg.HasSection(rule.section)
	case sectionKeyTruthy:
		section, ok := cfg.Section(rule.section)
		if !ok {
			return false
		}
		return isTruthy(section[rule.key])
	case sectionHasKey:
		section, ok := cfg.Section(rule.section)
		if !ok {
			return false
		}
		_, has := section[rule.key]
		return has
	}
	return true
}

func isTruthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// parentPrefix returns one "../" per non-empty path segment of baseURL.
func parentPrefix(baseURL string) string {
	var b strings.Builder
	for _, segment := range strings.Split(baseURL, "/") {
		if segment != "" {
			b.WriteString("../")
		}
	}
	return b.String()
}
