// Package archive provides a small DICOM-archive-shaped host server: a gin
// engine with the built-in system/plugin endpoints, a plugin loader, and the
// ordered REST callback table plugins register their URL patterns against.
package archive

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/dicomtools/go-explorer2/internal/host"
)

// serverVersion is reported to plugins and on /system.
const serverVersion = "1.12.4"

const defaultExplorerPage = `<!DOCTYPE html>
<html>
  <head><title>Archive</title></head>
  <body>
    <h1>Archive default explorer</h1>
    <p>This build ships the legacy explorer as a placeholder page.</p>
  </body>
</html>
`

type restCallback struct {
	raw     string
	pattern *regexp.Regexp
	handler host.RestHandler
}

// Server is the archive host. Plugins are loaded before Start; afterwards
// the callback table and registry are only read, so request handling needs
// no locking of its own.
type Server struct {
	Router    *gin.Engine
	Config    *Configuration
	StartTime time.Time

	registry  *Registry
	callbacks []restCallback
}

// NewServer creates the host with its built-in routes and the stub
// companion-plugin descriptors from configuration.
func NewServer(cfg *Configuration) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// Trust only the usual reverse-proxy sources for client IPs
	router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	web := cfg.Web()

	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	// SSL-specific headers only when the application terminates TLS itself,
	// not when a reverse proxy in front does
	if web.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	router.Use(secure.New(secureConfig))
	router.Use(apacheLogFormat())

	s := &Server{
		Router:   router,
		Config:   cfg,
		registry: NewRegistry(),
	}

	for _, record := range cfg.CompanionPlugins() {
		if err := s.registry.Add(record); err != nil {
			log.Printf("Ignoring companion plugin record: %v", err)
		}
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	s.Router.GET("/system", s.getSystem)
	s.Router.GET("/plugins", s.listPlugins)
	s.Router.GET("/plugins/:name", s.getPlugin)

	// The legacy UI every deployment has until a plugin replaces it
	s.Router.GET("/app/explorer.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html", []byte(defaultExplorerPage))
	})

	// Everything else goes through the plugin callback table
	s.Router.NoRoute(s.dispatchRestCallbacks)
}

func (s *Server) getSystem(c *gin.Context) {
	web := s.Config.Web()
	c.JSON(http.StatusOK, gin.H{
		"Name":       web.Name,
		"Version":    serverVersion,
		"ApiVersion": 23,
		"HttpPort":   web.ListenPort,
	})
}

func (s *Server) listPlugins(c *gin.Context) {
	names, err := s.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) getPlugin(c *gin.Context) {
	info, err := s.registry.Info(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// dispatchRestCallbacks matches the request path against the plugin URL
// patterns in registration order. Without a match, "/" falls back to the
// legacy explorer and anything else is a 404.
func (s *Server) dispatchRestCallbacks(c *gin.Context) {
	p := c.Request.URL.Path
	for _, cb := range s.callbacks {
		if m := cb.pattern.FindStringSubmatch(p); m != nil {
			cb.handler(c.Writer, c.Request, m[1:])
			return
		}
	}
	if p == "/" {
		c.Redirect(http.StatusFound, "/app/explorer.html")
		return
	}
	c.Status(http.StatusNotFound)
}

// Version implements host.Host.
func (s *Server) Version() string { return serverVersion }

// Configuration implements host.Host.
func (s *Server) Configuration() host.Configuration { return s.Config }

// Plugins implements host.Host.
func (s *Server) Plugins() host.Registry { return s.registry }

// RegisterRestCallback implements host.Host; patterns are anchored.
func (s *Server) RegisterRestCallback(pattern string, h host.RestHandler) error {
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return fmt.Errorf("REST callback pattern %q: %w", pattern, err)
	}
	s.callbacks = append(s.callbacks, restCallback{raw: pattern, pattern: re, handler: h})
	return nil
}

// SetPluginDescription implements host.Host.
func (s *Server) SetPluginDescription(plugin, description string) {
	s.registry.set(plugin, "Description", description)
}

// SetRootURI implements host.Host.
func (s *Server) SetRootURI(plugin, uri string) {
	s.registry.set(plugin, "RootUri", uri)
}

// LoadPlugin registers a plugin and runs its initialization. On failure the
// plugin's registry record and every callback it registered are discarded.
func (s *Server) LoadPlugin(p host.Plugin) error {
	if err := s.registry.Add(map[string]any{"ID": p.Name(), "Version": p.Version()}); err != nil {
		return err
	}

	callbacksBefore := len(s.callbacks)
	if err := p.Initialize(s); err != nil {
		s.callbacks = s.callbacks[:callbacksBefore]
		s.registry.Remove(p.Name())
		log.Printf("Plugin %s refused to load: %v", p.Name(), err)
		return err
	}

	log.Printf("Loaded plugin %s (version %s)", p.Name(), p.Version())
	return nil
}

// Start runs the HTTP server, with TLS when configured.
func (s *Server) Start() error {
	web := s.Config.Web()
	addr := ":" + strconv.Itoa(web.ListenPort)
	s.StartTime = time.Now()
	if web.SSL {
		if web.CertFile == "" || web.KeyFile == "" {
			return errors.New("SSL enabled but SslCertificate or SslPrivateKey not specified in config")
		}
		log.Printf("Starting HTTPS server on %s", addr)
		return s.Router.RunTLS(addr, web.CertFile, web.KeyFile)
	}
	log.Printf("Starting HTTP server on %s", addr)
	return s.Router.Run(addr)
}

func apacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}
