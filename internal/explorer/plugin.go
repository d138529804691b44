// Package explorer implements the Explorer 2 web UI plugin: it serves the
// bundled single-page application from the embedded resource store and
// exposes the configuration endpoint the frontend queries at load time.
package explorer

import (
	"fmt"
	"log"

	"github.com/dicomtools/go-explorer2/internal/assets"
	"github.com/dicomtools/go-explorer2/internal/config"
	"github.com/dicomtools/go-explorer2/internal/host"
)

// Version is set at build time.
var Version = "-unset-"

const (
	// PluginName is the identifier under which the plugin registers.
	PluginName = "explorer-2"

	pluginDescription = "Advanced user interface for the archive"

	// minHostVersion is the oldest host the plugin accepts.
	minHostVersion = "1.11.0"
)

// Plugin serves the Explorer 2 web application. All fields are set once in
// Initialize and read-only afterwards, so handlers are safe to invoke from
// any number of host worker goroutines.
type Plugin struct {
	host     host.Host
	settings *config.Settings
	baseURL  string
}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Version() string { return Version }

// Initialize verifies host compatibility, builds the effective settings and
// installs the plugin's routes. When the plugin is disabled it returns nil
// without registering anything. Nothing panics into the host's loader.
func (p *Plugin) Initialize(h host.Host) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initializing the Explorer 2 plugin: %v", r)
		}
	}()

	if host.CompareVersions(h.Version(), minHostVersion) < 0 {
		return fmt.Errorf("your version of the host server (%s) must be above %s to run this plugin",
			h.Version(), minHostVersion)
	}

	h.SetPluginDescription(PluginName, pluginDescription)

	section, _ := h.Configuration().Section(config.SectionName)
	settings, err := config.Load(section)
	if err != nil {
		return err
	}

	if !settings.Enable {
		log.Printf("Explorer 2 plugin is disabled")
		return nil
	}

	if err := config.ValidateRoot(settings.Root); err != nil {
		return err
	}

	p.host = h
	p.settings = settings
	p.baseURL = settings.Root

	log.Printf("URI to the Explorer 2 application: %s", p.baseURL)

	return p.installRoutes()
}

// installRoutes registers the static routes first, then the SPA fallbacks
// (everything under app/ that is not a real file resolves to the entry page
// so the frontend router can take over), then the configuration endpoint.
func (p *Plugin) installRoutes() error {
	routes := []struct {
		pattern string
		handler host.RestHandler
	}{
		{p.baseURL + "app/assets/(.*)", p.serveAssetsFolder},
		{p.baseURL + "app/index.html", p.serveFile(assets.WebApplicationIndex, "text/html")},
		{p.baseURL + "app/favicon.ico", p.serveFile(assets.WebApplicationFavicon, "image/x-icon")},
		{p.baseURL + "app/(.*)", p.serveFile(assets.WebApplicationIndex, "text/html")},
		{p.baseURL + "app", p.serveFile(assets.WebApplicationIndex, "text/html")},
		{p.baseURL + "api/configuration", p.handleConfiguration},
	}
	for _, route := range routes {
		if err := p.host.RegisterRestCallback(route.pattern, recoverable(route.pattern, route.handler)); err != nil {
			return err
		}
	}

	p.host.SetRootURI(PluginName, p.baseURL+"app/")

	if p.settings.ReplaceDefaultExplorer {
		if err := p.host.RegisterRestCallback("/", recoverable("/", p.redirectRoot)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) Finalize() error {
	return nil
}
