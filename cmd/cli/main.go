package main

import (
	"context"
	"log"
	"os"

	"github.com/codecampus/campus-cli/internal/buildinfo"
	"github.com/codecampus/campus-cli/internal/client/cli"
	"github.com/codecampus/campus-cli/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	root := cli.NewRootCommand(cfg)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
