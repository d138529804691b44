// Package assets holds the compiled-in resources of the Explorer 2 plugin:
// the bundled web application and the default configuration document. The
// store is read-only; lookups never fail, a missing resource is empty.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed app default-configuration.json
var embeddedFS embed.FS

// Folder identifies a directory resource inside the store.
type Folder string

// FileID identifies a single file resource inside the store.
type FileID string

const (
	// WebApplicationAssets holds the hashed JS/CSS bundles of the frontend.
	WebApplicationAssets Folder = "app/assets"
)

const (
	WebApplicationIndex   FileID = "app/index.html"
	WebApplicationFavicon FileID = "app/favicon.ico"
	DefaultConfiguration  FileID = "default-configuration.json"
)

// DirectoryResource returns the content of relPath inside folder, or nil if
// no such resource is embedded. A leading "/" on relPath is accepted.
func DirectoryResource(folder Folder, relPath string) []byte {
	p := path.Join(string(folder), strings.TrimPrefix(relPath, "/"))
	if !strings.HasPrefix(p, string(folder)+"/") {
		// Joining escaped the folder (empty or traversal path).
		return nil
	}
	content, err := fs.ReadFile(embeddedFS, p)
	if err != nil {
		return nil
	}
	return content
}

// FileResource returns the content of a single embedded file, or nil if the
// identifier is unknown.
func FileResource(id FileID) []byte {
	content, err := fs.ReadFile(embeddedFS, string(id))
	if err != nil {
		return nil
	}
	return content
}

// MimeJavaScript is the detected type of JS bundles; the entry bundle gets
// placeholder substitution when served with this type.
const MimeJavaScript = "application/javascript"

// ContentType returns the MIME type for a resource path based on its
// extension, falling back to a generic binary type.
func ContentType(resourcePath string) string {
	switch path.Ext(resourcePath) {
	case ".html", ".htm":
		return "text/html"
	case ".js", ".mjs":
		return MimeJavaScript
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".ico":
		return "image/x-icon"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".map":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".xml":
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}
