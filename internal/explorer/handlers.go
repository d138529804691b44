package explorer

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/dicomtools/go-explorer2/internal/assets"
	"github.com/dicomtools/go-explorer2/internal/host"
)

// recoverable keeps handler panics out of the host's dispatcher: the request
// ends with whatever was already written, and the panic is logged.
func recoverable(pattern string, h host.RestHandler) host.RestHandler {
	return func(w http.ResponseWriter, r *http.Request, groups []string) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Explorer 2: recovered panic while handling %q: %v", pattern, rec)
			}
		}()
		h(w, r, groups)
	}
}

func sendMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// serveAssetsFolder serves a file from the embedded assets folder. The
// relative path comes from the capture group of the URL pattern. Missing
// resources answer with an empty body. The JS entry bundle ("index.*") gets
// its base-URL placeholders substituted before being served.
func (p *Plugin) serveAssetsFolder(w http.ResponseWriter, r *http.Request, groups []string) {
	if r.Method != http.MethodGet {
		sendMethodNotAllowed(w)
		return
	}

	relPath := "/"
	if len(groups) > 0 {
		relPath = "/" + groups[0]
	}

	mimeType := assets.ContentType(relPath)
	content := assets.DirectoryResource(assets.WebApplicationAssets, relPath)

	if mimeType == assets.MimeJavaScript && strings.HasPrefix(path.Base(relPath), "index.") {
		replaced, err := substituteTokens(string(content), p.substitutions())
		if err != nil {
			log.Printf("Explorer 2: %s substitution error: %v", path.Base(relPath), err)
		} else {
			content = []byte(replaced)
		}
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// serveFile returns a handler serving one fixed embedded file with a fixed
// MIME type, ignoring any capture group.
func (p *Plugin) serveFile(id assets.FileID, mimeType string) host.RestHandler {
	return func(w http.ResponseWriter, r *http.Request, groups []string) {
		if r.Method != http.MethodGet {
			sendMethodNotAllowed(w)
			return
		}
		w.Header().Set("Content-Type", mimeType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(assets.FileResource(id))
	}
}

// redirectRoot sends "/" to the application entry point; registered only
// when ReplaceDefaultExplorer is set.
func (p *Plugin) redirectRoot(w http.ResponseWriter, r *http.Request, groups []string) {
	if r.Method != http.MethodGet {
		sendMethodNotAllowed(w)
		return
	}
	http.Redirect(w, r, p.baseURL+"app/", http.StatusMovedPermanently)
}

// handleConfiguration answers the frontend's load-time query: the UiOptions
// subtree of the effective configuration, plus the enablement map of the
// host's currently loaded plugins. Rebuilt on every request since plugin
// state can change without a restart.
func (p *Plugin) handleConfiguration(w http.ResponseWriter, r *http.Request, groups []string) {
	if r.Method != http.MethodGet {
		sendMethodNotAllowed(w)
		return
	}

	response := map[string]any{
		"UiOptions": p.settings.UiOptions,
		"Plugins":   p.pluginsConfiguration(),
	}

	body, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Printf("Explorer 2: serializing configuration: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
