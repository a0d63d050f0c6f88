package calculation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

var (
	// errors
	ErrNotFound        = errors.New("calculation not found")
	ErrNoEvaluations   = errors.New("add at least one evaluation day, or the total staff and papers")
	ErrInvalidRate     = errors.New("the evaluation rate must be positive")
	ErrUnknownExaminer = errors.New("examiner not found")

	// minimum similarity for a legacy examiner name to match an examiner
	NameMatchRatio = 0.8
)

type (
	Repository interface {
		// CreateCalculation stores calc and its evaluation days in one transaction.
		CreateCalculation(ctx context.Context, calc Calculation) (Calculation, error)
		// QueryCalculations returns the examiner's calculations, oldest first. An empty examinerID returns all.
		QueryCalculations(ctx context.Context, examinerID string) ([]Calculation, error)
		GetCalculationByID(ctx context.Context, id string) (Calculation, error)
		DeleteCalculation(ctx context.Context, id string) error
		CreateLegacyDocument(ctx context.Context, doc LegacyDocument) (LegacyDocument, error)
		// QueryLegacyDocuments returns the examiner's legacy documents. An empty examinerID returns all.
		QueryLegacyDocuments(ctx context.Context, examinerID string) ([]LegacyDocument, error)
	}

	// AggregateRepository computes totals over stored calculations.
	AggregateRepository interface {
		// Aggregate totals the examiner's calculations. An empty examinerID totals all of them.
		Aggregate(ctx context.Context, examinerID string) (Aggregate, error)
	}

	Aggregate struct {
		Examiners         int
		Calculations      int
		TotalPapers       int
		TotalStaff        int
		TotalAmount       decimal.Decimal
		LastCalculationAt *time.Time
	}

	// RateSource provides the current evaluation rate.
	RateSource interface {
		EvaluationRate() decimal.Decimal
	}

	Service struct {
		repo       Repository
		aggregates AggregateRepository
		examiners  examiner.Repository
		stats      *examiner.StatsCache
		rates      RateSource
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator
	}

	// SheetImport is a spreadsheet of evaluation rows for one examiner.
	SheetImport struct {
		ExaminerID     string
		CustomID       string
		EvaluationRate *decimal.Decimal
		Incentive      decimal.Decimal
		Filename       string
		Content        io.ReadSeeker
	}
)

func NewService(
	repo Repository,
	aggregates AggregateRepository,
	examiners examiner.Repository,
	stats *examiner.StatsCache,
	rates RateSource,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		repo:       repo,
		aggregates: aggregates,
		examiners:  examiners,
		stats:      stats,
		rates:      rates,
		logger:     logger,
		validate:   validate,
		translator: translator,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewCalculation) (Calculation, error) {
	if err := nc.Validate(svc.validate, svc.translator); err != nil {
		return Calculation{}, err
	}
	if _, err := svc.examiners.GetExaminerByID(ctx, nc.ExaminerID); err != nil {
		if errors.Cause(err) == examiner.ErrNotFound {
			return Calculation{}, core.NewValidationError(err, core.FieldError{Field: "examiner_id", Error: ErrUnknownExaminer.Error()})
		}
		return Calculation{}, errors.Wrap(err, "getting examiner")
	}

	rate := svc.rates.EvaluationRate()
	if nc.EvaluationRate != nil {
		rate = *nc.EvaluationRate
	}
	totals := ComputeTotals(nc)
	base, final := ComputeSalary(totals.Papers, rate, nc.Incentive)

	calc := Calculation{
		ExaminerID:     nc.ExaminerID,
		CustomID:       nc.CustomID,
		TotalStaff:     totals.Staff,
		TotalPapers:    totals.Papers,
		TotalDays:      totals.Days,
		EvaluationRate: rate,
		BaseSalary:     base,
		Incentive:      nc.Incentive.Round(2),
		FinalAmount:    final,
		CreatedAt:      time.Now().UTC(),
	}
	for _, nd := range nc.EvaluationDays {
		date, _ := format.ParseDate(nd.Date) // validated
		day := EvaluationDay{Date: date}
		for _, ns := range nd.StaffEvaluations {
			day.StaffEvaluations = append(day.StaffEvaluations, StaffEvaluation{
				StaffName:       core.CleanString(ns.StaffName),
				PapersEvaluated: ns.PapersEvaluated,
			})
		}
		calc.CalculationDays = append(calc.CalculationDays, CalculationDay{EvaluationDays: []EvaluationDay{day}})
	}

	calc, err := svc.repo.CreateCalculation(ctx, calc)
	if err != nil {
		return Calculation{}, errors.Wrap(err, "creating calculation")
	}
	svc.stats.Invalidate(calc.ExaminerID)
	return calc, nil
}

// Query returns the examiner's calculations, oldest first.
func (svc *Service) Query(ctx context.Context, examinerID string) ([]Calculation, error) {
	return svc.repo.QueryCalculations(ctx, examinerID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Calculation, error) {
	return svc.repo.GetCalculationByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	calc, err := svc.repo.GetCalculationByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteCalculation(ctx, id); err != nil {
		return errors.Wrap(err, "deleting calculation")
	}
	svc.stats.Invalidate(calc.ExaminerID)
	return nil
}

// History returns the examiner's calculations merged with their decoded legacy documents, oldest first.
// An empty examinerID returns everyone's.
func (svc *Service) History(ctx context.Context, examinerID string) ([]Calculation, error) {
	calcs, err := svc.repo.QueryCalculations(ctx, examinerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying calculations")
	}
	legacy, err := svc.legacyCalculations(ctx, examinerID)
	if err != nil {
		return nil, err
	}
	calcs = append(calcs, legacy...)
	SortByCreatedAt(calcs)
	return calcs, nil
}

func (svc *Service) legacyCalculations(ctx context.Context, examinerID string) ([]Calculation, error) {
	docs, err := svc.repo.QueryLegacyDocuments(ctx, examinerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying legacy documents")
	}
	calcs := make([]Calculation, 0, len(docs))
	for _, doc := range docs {
		calc, err := DecodeLegacy(doc.Document)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("skipping legacy document %s: %v", doc.ID, err))
			continue
		}
		if warnings := LegacyRangeWarnings(doc.Document); len(warnings) > 0 {
			svc.logger.Debug(fmt.Sprintf("legacy document %s: counts read as 0: %s", doc.ID, strings.Join(warnings, "; ")))
		}
		calc.ID = doc.ID
		calc.ExaminerID = doc.ExaminerID
		if calc.CreatedAt.IsZero() {
			calc.CreatedAt = doc.CreatedAt
		}
		calcs = append(calcs, calc)
	}
	return calcs, nil
}

// Stats returns the examiner's cached statistics, computing them on a miss.
func (svc *Service) Stats(ctx context.Context, examinerID string) (examiner.Stats, error) {
	if s, ok := svc.stats.Get(examinerID); ok {
		return s, nil
	}
	token := svc.stats.Begin(examinerID)
	if _, err := svc.examiners.GetExaminerByID(ctx, examinerID); err != nil {
		return examiner.Stats{}, err
	}

	agg, err := svc.aggregates.Aggregate(ctx, examinerID)
	if err != nil {
		return examiner.Stats{}, errors.Wrap(err, "aggregating calculations")
	}
	legacy, err := svc.legacyCalculations(ctx, examinerID)
	if err != nil {
		return examiner.Stats{}, err
	}
	agg = addLegacy(agg, legacy)

	s := examiner.Stats{
		Calculations:      agg.Calculations,
		TotalPapers:       agg.TotalPapers,
		TotalStaff:        agg.TotalStaff,
		TotalAmount:       agg.TotalAmount,
		LastCalculationAt: agg.LastCalculationAt,
	}
	svc.stats.SetIfCurrent(token, s)
	return s, nil
}

func addLegacy(agg Aggregate, legacy []Calculation) Aggregate {
	for _, calc := range legacy {
		agg.Calculations++
		agg.TotalPapers += calc.TotalPapers
		agg.TotalStaff += calc.TotalStaff
		agg.TotalAmount = agg.TotalAmount.Add(calc.FinalAmount)
		if !calc.CreatedAt.IsZero() && (agg.LastCalculationAt == nil || calc.CreatedAt.After(*agg.LastCalculationAt)) {
			t := calc.CreatedAt
			agg.LastCalculationAt = &t
		}
	}
	return agg
}

// ImportSheet creates a calculation from a spreadsheet of evaluation rows.
func (svc *Service) ImportSheet(ctx context.Context, si SheetImport) (Calculation, error) {
	days, err := ParseSheet(si.Content, si.Filename)
	if err != nil {
		return Calculation{}, err
	}
	return svc.Create(ctx, NewCalculation{
		ExaminerID:     si.ExaminerID,
		CustomID:       si.CustomID,
		EvaluationRate: si.EvaluationRate,
		Incentive:      si.Incentive,
		EvaluationDays: days,
	})
}

// ImportLegacy stores legacy documents (a JSON object or an array of them) after checking they decode.
// Documents referring to their examiner by name are matched to the most similar examiner name.
func (svc *Service) ImportLegacy(ctx context.Context, raw []byte) ([]LegacyDocument, error) {
	raws, err := splitDocuments(raw)
	if err != nil {
		return nil, err
	}

	examiners, err := svc.examiners.QueryExaminers(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying examiners")
	}

	docs := make([]LegacyDocument, 0, len(raws))
	for i, r := range raws {
		calc, err := DecodeLegacy(r)
		if err != nil {
			return nil, legacyError(i, err.Error())
		}
		ex, ok := resolveExaminer(calc.ExaminerID, LegacyExaminerName(r), examiners)
		if !ok {
			return nil, legacyError(i, ErrUnknownExaminer.Error())
		}
		if warnings := LegacyRangeWarnings(r); len(warnings) > 0 {
			svc.logger.Warn(fmt.Sprintf("legacy document %d: counts read as 0: %s", i, strings.Join(warnings, "; ")))
		}
		createdAt := calc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		docs = append(docs, LegacyDocument{ExaminerID: ex.ID, Document: r, CreatedAt: createdAt})
	}

	for i, doc := range docs {
		if docs[i], err = svc.repo.CreateLegacyDocument(ctx, doc); err != nil {
			return nil, errors.Wrap(err, "creating legacy document")
		}
		svc.stats.Invalidate(doc.ExaminerID)
	}
	return docs, nil
}

func splitDocuments(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, core.NewValidationError(ErrInvalidDocument, core.FieldError{Field: "document", Error: ErrInvalidDocument.Error()})
		}
		return raws, nil
	}
	return []json.RawMessage{trimmed}, nil
}

func legacyError(i int, msg string) error {
	msg = fmt.Sprintf("document %d: %s", i+1, msg)
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "document", Error: msg})
}

// resolveExaminer finds the examiner by uuid or code, else by the most similar name.
func resolveExaminer(ref, name string, examiners []examiner.Examiner) (examiner.Examiner, bool) {
	if ref != "" {
		for _, ex := range examiners {
			if ex.ID == ref || strings.EqualFold(ex.ExaminerID, ref) {
				return ex, true
			}
		}
	}
	if name == "" {
		return examiner.Examiner{}, false
	}

	var best examiner.Examiner
	var bestRatio float64
	target := normalizeName(name)
	for _, ex := range examiners {
		if r := nameSimilarity(target, normalizeName(ex.Name)); r > bestRatio {
			best, bestRatio = ex, r
		}
	}
	return best, bestRatio >= NameMatchRatio
}

func normalizeName(s string) []string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.Split(s, "")
}

func nameSimilarity(a, b []string) float64 {
	m := difflib.NewMatcher(a, b)
	if m.QuickRatio() < NameMatchRatio {
		return m.QuickRatio()
	}
	return m.Ratio()
}
