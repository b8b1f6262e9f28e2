// Command demowiki starts a tiny fake MediaWiki for demos and manual testing.
// Usage: go run ./cmd/demowiki [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wikicull/wikicull/internal/demowiki"
)

func main() {
	cfg := demowiki.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Printf("Demo wiki listening on http://localhost:%d\n", cfg.Port)
	fmt.Printf("Sample listing at http://localhost:%d/listing\n", cfg.Port)
	fmt.Printf("API endpoint at http://localhost:%d/w/api.php\n\n", cfg.Port)
	fmt.Printf("Try:\n  curl -s localhost:%d/listing | wikicull analyze --api http://localhost:%d/w/api.php --no-store\n",
		cfg.Port, cfg.Port)

	srv := demowiki.NewDemoWiki(cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("demo wiki: %v", err)
	}
}
