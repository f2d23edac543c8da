package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/smanielp/cactusgolf/apps/api/echo"
	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
	"github.com/smanielp/cactusgolf/core/user"
	consolemail "github.com/smanielp/cactusgolf/services/email/console"
	sendgridmail "github.com/smanielp/cactusgolf/services/email/sendgrid"
	logsvc "github.com/smanielp/cactusgolf/services/logger"
	"github.com/smanielp/cactusgolf/storage/database"
	inmemdb "github.com/smanielp/cactusgolf/storage/database/inmem"
	sqlxrepos "github.com/smanielp/cactusgolf/storage/database/sqlx"
	"github.com/smanielp/cactusgolf/storage/local"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up repositories; no database host means in-memory only
	var (
		userRepo     user.Repository
		drillRepo    drill.Repository
		practiceRepo practice.Repository
	)
	if conf.Database.Host != "" {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("Failed to close DB", err)
			}
		}()
		userRepo = sqlxrepos.NewUserRepository(db)
		drillRepo = sqlxrepos.NewDrillRepository(db)
		practiceRepo = sqlxrepos.NewPracticeRepository(db)
	} else {
		logger.Warn("no database configured; using in-memory repositories")
		memDB := inmemdb.NewDB()
		userRepo = inmemdb.NewUserRepository(memDB)
		drillRepo = inmemdb.NewDrillRepository(memDB)
		practiceRepo = inmemdb.NewPracticeRepository(memDB)
	}

	// device-scoped fallback store for anonymous practice
	localStore, err := local.NewStore(conf.LocalDataDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up local store: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = consolemail.NewService(conf.AppName, conf.DefaultFromEmail, logger)
	} else {
		mailSvc = sendgridmail.NewService(conf.SendgridAPIKey, conf.AppName, conf.DefaultFromEmail, logger)
	}
	usrSvc := user.NewService(userRepo, mailSvc, logger, conf)
	drillSvc := drill.NewService(drillRepo, logger, conf)
	practiceSvc := practice.NewService(practiceRepo, localStore, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	drill.InitValidators(validate, translator)
	practice.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			DrillSvc:    drillSvc,
			PracticeSvc: practiceSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
