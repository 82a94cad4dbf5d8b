// Command mint-token issues a session token for a viewer, for local development
// and smoke tests against a running server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prohmpiriya/tier-events/pkg/config"
	"github.com/prohmpiriya/tier-events/pkg/middleware"
)

func main() {
	viewerID := flag.String("viewer", "", "viewer ID to issue the token for (required)")
	firstName := flag.String("name", "", "first name carried in the token")
	envFile := flag.String("env", "", "optional .env file to read SESSION_* settings from")
	cookie := flag.Bool("cookie", false, "print a Cookie header instead of the bare token")
	flag.Parse()

	if *viewerID == "" {
		flag.Usage()
		os.Exit(2)
	}

	var (
		cfg *config.Config
		err error
	)
	if *envFile != "" {
		cfg, err = config.LoadWithPath(*envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := middleware.IssueSessionToken(&middleware.SessionConfig{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
	}, *viewerID, *firstName, cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	if *cookie {
		fmt.Printf("Cookie: %s=%s\n", cfg.Session.CookieName, token)
		return
	}
	fmt.Println(token)
}
