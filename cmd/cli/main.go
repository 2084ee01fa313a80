package main

import (
	"context"
	"log"
	"os"

	"github.com/ryliegao/ricebook-client/internal/buildinfo"
	"github.com/ryliegao/ricebook-client/internal/client/cli"
	"github.com/ryliegao/ricebook-client/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
