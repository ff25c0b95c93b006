package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	logsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/logger"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	cli := newCommandLine(conf, logger, db, os.Stdout)
	err = cli.run(os.Args[1:])

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	_ = zl.Sync()

	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
