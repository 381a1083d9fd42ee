package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nipa/healthsync/internal/flagx"
	"github.com/nipa/healthsync/internal/server"
	"github.com/nipa/healthsync/internal/server/auth"
	"github.com/nipa/healthsync/internal/server/config"
)

// issueFlag returns the owner id given with -issue, if any.
func issueFlag() string {
	var owner string
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.StringVar(&owner, "issue", "", "print an access token for this owner id and exit")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-issue"}))
	return owner
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if owner := issueFlag(); owner != "" {
		token, err := auth.GenerateToken(owner, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
