// Archive web server demo with the Explorer 2 plugin loaded.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"

	"github.com/dicomtools/go-explorer2/internal/archive"
	"github.com/dicomtools/go-explorer2/internal/explorer"
)

var (
	// command-line flags
	configPath  string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	pprofAddr   string
)

var appVersion = "-unset-"

func main() {
	explorer.Version = appVersion

	flag.StringVar(&configPath, "config", "", "Path to the archive configuration file (JSON, comments allowed)")
	flag.IntVar(&webport, "webport", 0, "Web server port (overrides HttpPort from the configuration)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&pprofAddr, "pprof", "", "Listen address for the pprof web endpoint (empty: disabled)")
	flag.Parse()

	log.Printf("Starting archive web server (version: %s)", appVersion)

	if pprofAddr != "" {
		p := prof.NewProf()
		go p.PprofWeb(pprofAddr)
	}

	cfg := archive.NewConfiguration(nil)
	if configPath != "" {
		loaded, err := archive.LoadConfiguration(configPath)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
		cfg = loaded
	}
	if webport > 0 {
		cfg.Set("HttpPort", float64(webport))
	}
	if webssl {
		cfg.Set("Ssl", true)
		cfg.Set("SslCertificate", webcertFile)
		cfg.Set("SslPrivateKey", webkeyFile)
	}

	server := archive.NewServer(cfg)

	ui := explorer.New()
	if err := server.LoadPlugin(ui); err != nil {
		// The archive keeps serving without its modern UI.
		log.Printf("Continuing without the Explorer 2 plugin")
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		if err := ui.Finalize(); err != nil {
			log.Printf("Finalizing the Explorer 2 plugin: %v", err)
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("Web server error: %v", err)
	}
}
