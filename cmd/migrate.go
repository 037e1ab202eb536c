package main

import (
	"github.com/urfave/cli"

	"github.com/vnkhanh/podcastr-backend/config"
)

func makeMigrateCMD() cli.Command {
	return cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Creates tables and search indexes",
		Action:  migrate,
	}
}

func migrate(c *cli.Context) error {
	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	return config.Migrate(db)
}
