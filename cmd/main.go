package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "podcastr"
	app.Usage = "Podcast publishing API"
	app.Version = "0.1.0"
	configure(app)
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("failed to run app")
	}
}

func configure(app *cli.App) {
	app.Commands = []cli.Command{makeServeCMD(), makeMigrateCMD()}
}
