package main

import (
	"context"
	"log"
	"os"

	"github.com/growthic-inc/growthic-reddit/cmd/growthicreddit"
)

func main() {
	app := growthicreddit.BuildCLI()

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "start")
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
