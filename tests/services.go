package testutil

import (
	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/report"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	emailsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/email"
	inmemdb "github.com/Melvinkheturus/examinerpro-web-sub001/storage/database/inmem"
)

// Services is the app wired to in-memory repositories, with synchronous settings and email.
type Services struct {
	Conf           *core.Config
	DB             *inmemdb.DB
	ExaminerRepo   examiner.Repository
	CalcRepo       calculation.Repository
	Stats          *examiner.StatsCache
	Settings       setting.Store
	Mail           *emailsvc.ConsoleServiceMock
	ExaminerSvc    *examiner.Service
	CalculationSvc *calculation.Service
	ReportSvc      *report.Service
}

func NewServices() *Services {
	conf := core.NewTestConfig()
	validate, translator := NewValidator()
	logger := NewLogger()
	core.ParseEmailTemplates(conf, logger)

	db := inmemdb.Open()
	exRepo := inmemdb.NewExaminerRepository(db)
	calcRepo := inmemdb.NewCalculationRepository(db)
	s := &Services{
		Conf:         conf,
		DB:           db,
		ExaminerRepo: exRepo,
		CalcRepo:     calcRepo,
		Stats:        examiner.NewStatsCache(),
		Settings:     setting.NewStoreMock(inmemdb.NewSettingRepository(db), logger, validate, translator),
		Mail:         emailsvc.NewConsoleServiceMock(conf, logger),
	}
	s.ExaminerSvc = examiner.NewService(exRepo, s.Stats, validate, translator)
	s.CalculationSvc = calculation.NewService(calcRepo, calcRepo, exRepo, s.Stats, s.Settings, logger, validate, translator)

	letterhead, _ := report.LoadLetterhead("")
	s.ReportSvc = report.NewService(
		s.ExaminerSvc, s.CalculationSvc, s.Mail,
		report.Options{Letterhead: letterhead, MarkEstimated: conf.Report.MarkEstimated},
		conf.Report.Timeout, validate, translator,
	)
	return s
}
