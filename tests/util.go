package testutil

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
	logsvc "github.com/Melvinkheturus/examinerpro-web-sub001/services/logger"
	"github.com/Melvinkheturus/examinerpro-web-sub001/storage/database"
)

// NewValidator returns a validator & translator with all the app's validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	examiner.InitValidators(validate, translator)
	setting.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a logger that discards its output and never reports to Rollbar.
func NewLogger() *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func CreateExaminer(
	t *testing.T,
	repo examiner.Repository,
	name, code, department string,
	createdAt ...time.Time,
) examiner.Examiner {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	ex := examiner.Examiner{
		Name:       name,
		ExaminerID: code,
		Department: department,
		Position:   "Assistant Professor",
		Email:      code + "@college.test",
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	ex, err := repo.CreateExaminer(context.Background(), ex)
	if err != nil {
		t.Fatalf("CreateExaminer() failed: %v", err)
	}
	return ex
}

// Day builds an evaluation day; staff alternates names and paper counts.
func Day(date time.Time, staff ...interface{}) calculation.EvaluationDay {
	day := calculation.EvaluationDay{Date: date}
	for i := 0; i+1 < len(staff); i += 2 {
		day.StaffEvaluations = append(day.StaffEvaluations, calculation.StaffEvaluation{
			StaffName:       staff[i].(string),
			PapersEvaluated: staff[i+1].(int),
		})
	}
	return day
}

// CreateCalculation stores a calculation for the examiner, deriving its totals and salary (at rate 20) from days.
// Without days, totalStaff & totalPapers are kept as is.
func CreateCalculation(
	t *testing.T,
	repo calculation.Repository,
	examinerID string,
	createdAt time.Time,
	totalStaff, totalPapers int,
	days ...calculation.EvaluationDay,
) calculation.Calculation {
	calc := calculation.Calculation{
		ExaminerID:     examinerID,
		TotalStaff:     totalStaff,
		TotalPapers:    totalPapers,
		EvaluationRate: calculation.DefaultEvaluationRate,
		Incentive:      decimal.Zero,
		CreatedAt:      createdAt.UTC(),
	}
	if len(days) > 0 {
		calc.TotalStaff, calc.TotalPapers = 0, 0
		dates := make(map[string]bool)
		for _, day := range days {
			calc.CalculationDays = append(calc.CalculationDays, calculation.CalculationDay{EvaluationDays: []calculation.EvaluationDay{day}})
			dates[day.Date.Format("2006-01-02")] = true
			for _, se := range day.StaffEvaluations {
				calc.TotalStaff++
				calc.TotalPapers += se.PapersEvaluated
			}
		}
		calc.TotalDays = len(dates)
	}
	calc.BaseSalary, calc.FinalAmount = calculation.ComputeSalary(calc.TotalPapers, calc.EvaluationRate, calc.Incentive)

	calc, err := repo.CreateCalculation(context.Background(), calc)
	if err != nil {
		t.Fatalf("CreateCalculation() failed: %v", err)
	}
	return calc
}

// OpenTestDB connects to the database at $TEST_DATABASE_URL, migrates it and empties its tables.
// The test is skipped when the variable is not set.
func OpenTestDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := database.OpenURL(url)
	if err != nil {
		t.Fatalf("OpenURL() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db, "up"); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE examiners, settings CASCADE"); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}
