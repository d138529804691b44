package archive

import (
	"fmt"
	"os"

	"github.com/dicomtools/go-explorer2/internal/config"
)

// Configuration is the host server's configuration store: one JSON document
// (comments allowed) whose top-level object-valued keys are the named
// sections plugins query.
type Configuration struct {
	doc map[string]any
}

// LoadConfiguration reads the server configuration file.
func LoadConfiguration(path string) (*Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var doc map[string]any
	if err := config.UnmarshalJSONC(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing configuration %s: %w", path, err)
	}
	return &Configuration{doc: doc}, nil
}

// NewConfiguration wraps an already-parsed document; used by the tests and
// by embedders that build configuration programmatically.
func NewConfiguration(doc map[string]any) *Configuration {
	if doc == nil {
		doc = map[string]any{}
	}
	return &Configuration{doc: doc}
}

// Set overrides a top-level configuration key, e.g. from command-line flags.
// Must happen before the server is created.
func (c *Configuration) Set(key string, value any) {
	c.doc[key] = value
}

// HasSection reports whether name exists as an object-valued top-level key.
func (c *Configuration) HasSection(name string) bool {
	_, ok := c.doc[name].(map[string]any)
	return ok
}

// Section returns the named section, or ok=false when absent or not an
// object.
func (c *Configuration) Section(name string) (map[string]any, bool) {
	section, ok := c.doc[name].(map[string]any)
	return section, ok
}

// WebSettings holds the host's own HTTP server settings, read from the
// top-level configuration keys.
type WebSettings struct {
	Name       string
	ListenPort int
	SSL        bool
	CertFile   string
	KeyFile    string
}

// Web extracts the HTTP settings with archive defaults.
func (c *Configuration) Web() WebSettings {
	s := WebSettings{
		Name:       "Archive",
		ListenPort: 8042,
	}
	if v, ok := c.doc["Name"].(string); ok && v != "" {
		s.Name = v
	}
	if v, ok := c.doc["HttpPort"].(float64); ok && v > 0 {
		s.ListenPort = int(v)
	}
	if v, ok := c.doc["Ssl"].(bool); ok {
		s.SSL = v
	}
	if v, ok := c.doc["SslCertificate"].(string); ok {
		s.CertFile = v
	}
	if v, ok := c.doc["SslPrivateKey"].(string); ok {
		s.KeyFile = v
	}
	return s
}

// CompanionPlugins returns the stub plugin descriptors declared under the
// top-level "CompanionPlugins" key, so the enablement map can be exercised
// without the companion plugins actually being linked in.
func (c *Configuration) CompanionPlugins() []map[string]any {
	list, ok := c.doc["CompanionPlugins"].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, entry := range list {
		if record, ok := entry.(map[string]any); ok {
			out = append(out, record)
		}
	}
	return out
}
