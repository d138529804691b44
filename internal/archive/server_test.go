package archive_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dicomtools/go-explorer2/internal/archive"
	"github.com/dicomtools/go-explorer2/internal/explorer"
)

// startArchive brings up a test host with the Explorer 2 plugin loaded and
// returns a client that does not follow redirects.
func startArchive(t *testing.T, doc map[string]any) (*httptest.Server, *http.Client) {
	t.Helper()
	server := archive.NewServer(archive.NewConfiguration(doc))
	if err := server.LoadPlugin(explorer.New()); err != nil {
		t.Fatalf("LoadPlugin: %v", err)
	}
	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ts, client
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func TestServesEntryPage(t *testing.T) {
	ts, client := startArchive(t, nil)

	for _, path := range []string{"/ui/app/index.html", "/ui/app", "/ui/app/studies/123"} {
		resp := get(t, client, ts.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
			continue
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s: Content-Type %q", path, ct)
		}
		if !strings.Contains(body(t, resp), "Explorer 2") {
			t.Errorf("GET %s: entry page not served", path)
		}
	}
}

func TestServesSubstitutedBundle(t *testing.T) {
	ts, client := startArchive(t, nil)

	resp := get(t, client, ts.URL+"/ui/app/assets/index.91fd2c4a.js")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	b := body(t, resp)
	if strings.Contains(b, "${") {
		t.Error("bundle served with unsubstituted tokens")
	}
	if !strings.Contains(b, "/ui/api/") {
		t.Error("bundle missing the UI API base URL")
	}
}

func TestUnknownAssetIsEmptyOK(t *testing.T) {
	ts, client := startArchive(t, nil)

	resp := get(t, client, ts.URL+"/ui/app/assets/unknown/path.css")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, want 200", resp.StatusCode)
	}
	if b := body(t, resp); b != "" {
		t.Errorf("body = %q, want empty", b)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, client := startArchive(t, nil)

	resp, err := client.Post(ts.URL+"/ui/app/index.html", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want GET", allow)
	}
	if b := body(t, resp); b != "" {
		t.Errorf("body = %q, want empty", b)
	}
}

func TestConfigurationEndpointReflectsRegistry(t *testing.T) {
	ts, client := startArchive(t, map[string]any{
		"CompanionPlugins": []any{
			map[string]any{"ID": "dicom-web", "Version": "1.16"},
			map[string]any{"ID": "transfers", "Version": "1.4"},
		},
		// No DicomWeb section: dicom-web is loaded but not enabled.
	})

	resp := get(t, client, ts.URL+"/ui/api/configuration")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var payload struct {
		UiOptions map[string]any
		Plugins   map[string]map[string]any
	}
	if err := json.Unmarshal([]byte(body(t, resp)), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Plugins["dicom-web"]["Enabled"] != false {
		t.Errorf("dicom-web Enabled = %v, want false", payload.Plugins["dicom-web"]["Enabled"])
	}
	if payload.Plugins["transfers"]["Enabled"] != true {
		t.Errorf("transfers Enabled = %v, want true", payload.Plugins["transfers"]["Enabled"])
	}
	if payload.Plugins[explorer.PluginName] == nil {
		t.Error("the UI plugin itself missing from the map")
	}
	if len(payload.UiOptions) == 0 {
		t.Error("UiOptions empty")
	}
}

func TestDicomWebEnabledWithSection(t *testing.T) {
	ts, client := startArchive(t, map[string]any{
		"DicomWeb": map[string]any{"Enable": true},
		"CompanionPlugins": []any{
			map[string]any{"ID": "dicom-web", "Version": "1.16"},
		},
	})

	resp := get(t, client, ts.URL+"/ui/api/configuration")
	var payload struct {
		Plugins map[string]map[string]any
	}
	if err := json.Unmarshal([]byte(body(t, resp)), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Plugins["dicom-web"]["Enabled"] != true {
		t.Errorf("dicom-web Enabled = %v, want true", payload.Plugins["dicom-web"]["Enabled"])
	}
}

func TestRootRedirects(t *testing.T) {
	// Default: the legacy explorer keeps the root.
	ts, client := startArchive(t, nil)
	resp := get(t, client, ts.URL+"/")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/app/explorer.html" {
		t.Errorf("Location = %q", loc)
	}

	// ReplaceDefaultExplorer: the plugin takes over the root.
	ts2, client2 := startArchive(t, map[string]any{
		"Explorer2": map[string]any{"ReplaceDefaultExplorer": true},
	})
	resp2 := get(t, client2, ts2.URL+"/")
	if resp2.StatusCode != http.StatusMovedPermanently {
		t.Errorf("status %d, want 301", resp2.StatusCode)
	}
	if loc := resp2.Header.Get("Location"); loc != "/ui/app/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestPluginRegistryEndpoints(t *testing.T) {
	ts, client := startArchive(t, nil)

	resp := get(t, client, ts.URL+"/plugins")
	var names []string
	if err := json.Unmarshal([]byte(body(t, resp)), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, n := range names {
		if n == explorer.PluginName {
			found = true
		}
	}
	if !found {
		t.Errorf("plugin list %v missing %s", names, explorer.PluginName)
	}

	resp = get(t, client, ts.URL+"/plugins/"+explorer.PluginName)
	var info map[string]any
	if err := json.Unmarshal([]byte(body(t, resp)), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["RootUri"] != "/ui/app/" {
		t.Errorf("RootUri = %v", info["RootUri"])
	}
	if info["Description"] == nil {
		t.Error("Description missing")
	}

	resp = get(t, client, ts.URL+"/plugins/absent")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestDisabledPluginRegistersNothing(t *testing.T) {
	ts, client := startArchive(t, map[string]any{
		"Explorer2": map[string]any{"Enable": false},
	})

	resp := get(t, client, ts.URL+"/ui/app/index.html")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestFailedPluginLoadDiscardsRegistrations(t *testing.T) {
	server := archive.NewServer(archive.NewConfiguration(map[string]any{
		"Explorer2": map[string]any{"Root": "ui/"}, // malformed on purpose
	}))
	if err := server.LoadPlugin(explorer.New()); err == nil {
		t.Fatal("expected initialization failure")
	}

	ts := httptest.NewServer(server.Router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/plugins")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var names []string
	if err := json.Unmarshal([]byte(body(t, resp)), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("registry kept records of the failed plugin: %v", names)
	}
}

func TestCustomRootMount(t *testing.T) {
	ts, client := startArchive(t, map[string]any{
		"Explorer2": map[string]any{"Root": "/pacs/viewer/"},
	})

	resp := get(t, client, ts.URL+"/pacs/viewer/app/index.html")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, want 200", resp.StatusCode)
	}
	// The old mount point must be gone.
	resp = get(t, client, ts.URL+"/ui/app/index.html")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestSystemEndpoint(t *testing.T) {
	ts, client := startArchive(t, map[string]any{"Name": "TestArchive"})

	resp := get(t, client, ts.URL+"/system")
	var system map[string]any
	if err := json.Unmarshal([]byte(body(t, resp)), &system); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if system["Name"] != "TestArchive" {
		t.Errorf("Name = %v", system["Name"])
	}
	if system["Version"] == "" {
		t.Error("Version missing")
	}
}
