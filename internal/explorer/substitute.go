package explorer

import (
	"fmt"
	"strings"
)

// substitutions returns the placeholder values injected into the JS entry
// bundle. The host API is always mounted at "/"; the app and UI API bases
// derive from the plugin's configured root.
func (p *Plugin) substitutions() map[string]string {
	trimmed := strings.TrimSuffix(p.baseURL, "/")
	return map[string]string{
		"API_BASE_URL":    "/",
		"APP_BASE_URL":    trimmed + "/app",
		"UI_API_BASE_URL": trimmed + "/api/",
	}
}

// substituteTokens replaces every ${NAME} occurrence in content with its
// value. An unterminated token or a name missing from values is an error;
// the caller then serves the content unmodified.
func substituteTokens(content string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(content))

	for {
		start := strings.Index(content, "${")
		if start < 0 {
			b.WriteString(content)
			return b.String(), nil
		}
		end := strings.Index(content[start:], "}")
		if end < 0 {
			return "", fmt.Errorf("unterminated token at offset %d", start)
		}

		name := content[start+2 : start+end]
		value, ok := values[name]
		if !ok {
			return "", fmt.Errorf("unknown token %q", name)
		}

		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[start+end+1:]
	}
}
