package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
	"github.com/smanielp/cactusgolf/core/user"
	consolemail "github.com/smanielp/cactusgolf/services/email/console"
	logsvc "github.com/smanielp/cactusgolf/services/logger"
	"github.com/smanielp/cactusgolf/storage/database"
	sqlxrepos "github.com/smanielp/cactusgolf/storage/database/sqlx"
	"github.com/smanielp/cactusgolf/storage/local"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if conf.Database.Host == "" {
		logger.Fatal("admin commands need a configured database host")
	}

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(false)
	mailSvc := consolemail.NewService(conf.AppName, conf.DefaultFromEmail, svcLogger)

	// start CLI
	cli := commandLine{
		db:          db,
		conf:        conf,
		usrSvc:      user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, svcLogger, conf),
		drillSvc:    drill.NewService(sqlxrepos.NewDrillRepository(db), svcLogger, conf),
		practiceSvc: newPracticeService(db, svcLogger, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newPracticeService(db *sqlx.DB, svcLogger core.Logger, conf *core.Config) *practice.Service {
	localStore, err := local.NewStore(conf.LocalDataDir)
	errAndDie(err)
	return practice.NewService(sqlxrepos.NewPracticeRepository(db), localStore, svcLogger, conf)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
