// Command token mints a bearer token for a collection owner, signed with the
// server's token settings. Server flags go after "--":
//
//	token -owner 42 -- -token-sign-key secret
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
)

func main() {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	ownerID := fs.Int64("owner", 0, "owner id to put in the token subject")
	fs.Parse(os.Args[1:])

	appCfg, err := config.GetAppConfig(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	token, err := utils.GenerateJWTToken(appCfg.TokenIssuer, *ownerID, appCfg.TokenDuration, appCfg.TokenSignKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token.SignedString)
}
