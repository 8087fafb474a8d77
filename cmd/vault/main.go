package main

import (
	"context"
	"log"

	"github.com/NoTermTm/noterm-vault/internal/cli"
	"github.com/NoTermTm/noterm-vault/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
