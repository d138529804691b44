// Package host defines the contract between the archive server and its
// plugins: the lifecycle a plugin exposes, and the services the server
// makes available to a plugin during initialization and request handling.
package host

import "net/http"

// RestHandler handles one request dispatched by the host. groups holds the
// capture groups of the URL pattern the callback was registered with, in
// order; it is empty for patterns without capture groups.
type RestHandler func(w http.ResponseWriter, r *http.Request, groups []string)

// Plugin is the lifecycle contract the host's plugin loader requires.
type Plugin interface {
	// Name returns the plugin identifier as reported by the plugin registry.
	Name() string

	// Version returns the plugin version string.
	Version() string

	// Initialize is called once, synchronously, before the host starts
	// serving. A non-nil error means the plugin refuses to load; the host
	// discards all of its registrations.
	Initialize(h Host) error

	// Finalize is called once at host shutdown.
	Finalize() error
}

// Host is the host-side surface a plugin may use.
type Host interface {
	// Version returns the host server version, e.g. "1.12.4".
	Version() string

	// Configuration gives read access to the host configuration store.
	Configuration() Configuration

	// Plugins gives live access to the host plugin registry. Queries
	// reflect current state, not a startup snapshot.
	Plugins() Registry

	// RegisterRestCallback installs a handler for a URL pattern.
	// Patterns are anchored and may contain capture groups, e.g.
	// "/ui/app/assets/(.*)". Callbacks are matched in registration order.
	RegisterRestCallback(pattern string, h RestHandler) error

	// SetPluginDescription sets the human-readable description stored in
	// the registry record of the named plugin.
	SetPluginDescription(plugin, description string)

	// SetRootURI declares the URI the host should advertise as the named
	// plugin's UI entry point.
	SetRootURI(plugin, uri string)
}

// Configuration is the key/value configuration store owned by the host.
// Sections are top-level object-valued keys of the host configuration file.
type Configuration interface {
	// HasSection reports whether the named section exists.
	HasSection(name string) bool

	// Section returns the named section as a generic JSON object. ok is
	// false when the section is absent or not an object.
	Section(name string) (section map[string]any, ok bool)
}

// Registry is the host's live plugin registry.
type Registry interface {
	// List returns the names of all currently loaded plugins.
	List() ([]string, error)

	// Info returns the registry record of a plugin as a generic JSON
	// object (at least "ID" and "Version"; "RootUri" when the plugin
	// exposes a UI).
	Info(name string) (map[string]any, error)
}
