package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/Melvinkheturus/examinerpro-web-sub001/apps/api/echo"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/report"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	emailsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/email"
	logsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/logger"
	"github.com/Melvinkheturus/examinerpro-web-sub001/storage/database"
	inmemdb "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/inmem"
	boiledrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlboiler"
	sqlxrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlx"
)

type repositories struct {
	examiners    examiner.Repository
	calculations calculation.Repository
	aggregates   calculation.AggregateRepository
	settings     setting.Repository
}

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

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB & repos
	var repos repositories
	if conf.Server.InMemory {
		logger.Warn("serving from in-memory repositories; data is lost on exit")
		mem := inmemdb.Open()
		calcRepo := inmemdb.NewCalculationRepository(mem)
		repos = repositories{
			examiners:    inmemdb.NewExaminerRepository(mem),
			calculations: calcRepo,
			aggregates:   calcRepo,
			settings:     inmemdb.NewSettingRepository(mem),
		}
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		repos = repositories{
			examiners:    sqlxrepos.NewExaminerRepository(db),
			calculations: sqlxrepos.NewCalculationRepository(db),
			aggregates:   boiledrepos.NewAggregateRepository(db),
			settings:     sqlxrepos.NewSettingRepository(db),
		}
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	examiner.InitValidators(validate, translator)
	setting.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	settings := setting.NewStore(repos.settings, logger, validate, translator)
	settings.Load(context.Background())

	stats := examiner.NewStatsCache()
	examinerSvc := examiner.NewService(repos.examiners, stats, validate, translator)
	calcSvc := calculation.NewService(
		repos.calculations, repos.aggregates, repos.examiners, stats, settings, logger, validate, translator,
	)

	letterhead, err := report.LoadLetterhead(conf.Report.LetterheadPath)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading letterhead: %v", err), err)
	}
	reportSvc := report.NewService(
		examinerSvc, calcSvc, mailSvc,
		report.Options{Letterhead: letterhead, MarkEstimated: conf.Report.MarkEstimated},
		conf.Report.Timeout, validate, translator,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus collectors.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ExaminerSvc:    examinerSvc,
		CalculationSvc: calcSvc,
		ReportSvc:      reportSvc,
		Settings:       settings,
		Validate:       validate,
		Translator:     translator,
		Metrics:        echoapi.NewMetrics(prometheus.DefaultRegisterer),
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}

	// flush background work before the DB goes away
	settings.Wait()
	mailSvc.Wait()
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db, "up"); err != nil {
		_ = db.Close()
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
