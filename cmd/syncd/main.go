package main

import (
	"context"
	"log"

	"github.com/nipa/healthsync/internal/client/config"
	"github.com/nipa/healthsync/internal/client/daemon"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := daemon.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
