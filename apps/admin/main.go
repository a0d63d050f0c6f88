package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/report"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	emailsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/email"
	logsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/logger"
	"github.com/Melvinkheturus/examinerpro-web-sub001/storage/database"
	boiledrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlboiler"
	sqlxrepos "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	// logs go to stderr: stdout may carry a report
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB & repos
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	examinerRepo := sqlxrepos.NewExaminerRepository(db)
	calcRepo := sqlxrepos.NewCalculationRepository(db)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	examiner.InitValidators(validate, translator)
	setting.InitValidators(validate, translator)

	settings := setting.NewStore(sqlxrepos.NewSettingRepository(db), logger, validate, translator)
	settings.Load(context.Background())

	stats := examiner.NewStatsCache()
	examinerSvc := examiner.NewService(examinerRepo, stats, validate, translator)
	calcSvc := calculation.NewService(
		calcRepo, boiledrepos.NewAggregateRepository(db), examinerRepo, stats, settings, logger, validate, translator,
	)

	letterhead, err := report.LoadLetterhead(conf.Report.LetterheadPath)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading letterhead: %v", err), err)
	}
	reportSvc := report.NewService(
		examinerSvc, calcSvc, emailsvc.NewConsoleService(conf, logger),
		report.Options{Letterhead: letterhead, MarkEstimated: conf.Report.MarkEstimated},
		conf.Report.Timeout, validate, translator,
	)

	// start CLI
	cli := commandLine{
		db:          db,
		examinerSvc: examinerSvc,
		calcSvc:     calcSvc,
		reportSvc:   reportSvc,
		stdout:      os.Stdout,
	}
	err = cli.run(os.Args)
	settings.Wait()
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
