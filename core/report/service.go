package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/format"
)

const (
	PDFContentType  = "application/pdf"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	emailTemplate = "examiner_report"
)

type (
	ExaminerSource interface {
		GetByID(ctx context.Context, id string) (examiner.Examiner, error)
		Query(ctx context.Context, filter *examiner.QueryFilter, ordering ...core.DBOrdering) ([]examiner.Examiner, error)
	}

	CalculationSource interface {
		GetByID(ctx context.Context, id string) (calculation.Calculation, error)
		// History returns the examiner's native and legacy calculations, oldest first.
		History(ctx context.Context, examinerID string) ([]calculation.Calculation, error)
	}

	// EmailRequest asks for an examiner's history report to be mailed.
	EmailRequest struct {
		To            []string `json:"to" validate:"required,min=1,max=10,dive,email"`
		RecipientName string   `json:"recipient_name" validate:"max=100"`
		Note          string   `json:"note" validate:"max=1000"`
	}

	// Service gathers report data and delivers rendered documents.
	Service struct {
		examiners  ExaminerSource
		calcs      CalculationSource
		mail       core.EmailService
		defaults   Options
		timeout    time.Duration
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(
	examiners ExaminerSource,
	calcs CalculationSource,
	mailSvc core.EmailService,
	defaults Options,
	timeout time.Duration,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		examiners:  examiners,
		calcs:      calcs,
		mail:       mailSvc,
		defaults:   defaults,
		timeout:    timeout,
		validate:   validate,
		translator: translator,
	}
}

// Options returns the default composition options, with filename as the override.
func (svc *Service) Options(filename string) Options {
	opts := svc.defaults
	opts.Filename = filename
	return opts
}

func (svc *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, svc.timeout)
}

func (svc *Service) history(ctx context.Context, examinerID string) (examiner.Examiner, []calculation.Calculation, error) {
	ex, err := svc.examiners.GetByID(ctx, examinerID)
	if err != nil {
		return examiner.Examiner{}, nil, errors.Wrap(err, "finding examiner")
	}
	calcs, err := svc.calcs.History(ctx, ex.ID)
	if err != nil {
		return examiner.Examiner{}, nil, errors.Wrap(err, "loading history")
	}
	return ex, calcs, nil
}

func (svc *Service) SingleCalculation(ctx context.Context, calcID string, opts Options) (*Document, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	calc, err := svc.calcs.GetByID(ctx, calcID)
	if err != nil {
		return nil, errors.Wrap(err, "finding calculation")
	}
	ex, err := svc.examiners.GetByID(ctx, calc.ExaminerID)
	if err != nil {
		return nil, errors.Wrap(err, "finding examiner")
	}
	return SingleCalculation(ex, calc, opts), nil
}

func (svc *Service) ExaminerHistory(ctx context.Context, examinerID string, opts Options) (*Document, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	ex, calcs, err := svc.history(ctx, examinerID)
	if err != nil {
		return nil, err
	}
	return ExaminerHistory(ex, calcs, opts), nil
}

func (svc *Service) Custom(ctx context.Context, examinerID string, opts CustomOptions) (*Document, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	ex, calcs, err := svc.history(ctx, examinerID)
	if err != nil {
		return nil, err
	}
	for _, s := range opts.Sections {
		if !has(AllSections, s) {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "sections",
				Error: fmt.Sprintf("unknown section %q", s),
			})
		}
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "to", Error: "must not be before from"})
	}
	return Custom(ex, calcs, opts), nil
}

// Collect returns every examiner (by name) with their history; examinerID restricts it to one examiner.
func (svc *Service) Collect(ctx context.Context, examinerID string) ([]ExaminerCalculations, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	if examinerID != "" {
		ex, calcs, err := svc.history(ctx, examinerID)
		if err != nil {
			return nil, err
		}
		return []ExaminerCalculations{{Examiner: ex, Calculations: calcs}}, nil
	}

	examiners, err := svc.examiners.Query(ctx, nil, core.DBOrdering{Field: "name", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying examiners")
	}
	list := make([]ExaminerCalculations, 0, len(examiners))
	for _, ex := range examiners {
		calcs, err := svc.calcs.History(ctx, ex.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "loading history of %s", ex.ExaminerID)
		}
		list = append(list, ExaminerCalculations{Examiner: ex, Calculations: calcs})
	}
	return list, nil
}

func (svc *Service) AllExaminers(ctx context.Context, opts Options) (*Document, error) {
	list, err := svc.Collect(ctx, "")
	if err != nil {
		return nil, err
	}
	return AllExaminers(list, opts), nil
}

// RenderPDF renders doc within the report timeout.
func (svc *Service) RenderPDF(ctx context.Context, w io.Writer, doc *Document) error {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()
	return RenderPDF(ctx, w, doc)
}

// Export writes the XLSX history of one examiner, or of all of them when examinerID is empty.
func (svc *Service) Export(ctx context.Context, w io.Writer, examinerID string) error {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	list, err := svc.Collect(ctx, examinerID)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return errors.Wrap(err, "exporting history")
	}
	return ExportXLSX(w, list, svc.defaults)
}

// EmailHistory renders the examiner's history report and mails it as an attachment.
// Sending happens in the background; see core.EmailService.
func (svc *Service) EmailHistory(ctx context.Context, examinerID string, req EmailRequest) error {
	if err := svc.validate.Struct(req); err != nil {
		return core.ValidationErrorFrom(err, svc.translator)
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	ex, calcs, err := svc.history(ctx, examinerID)
	if err != nil {
		return err
	}
	doc := ExaminerHistory(ex, calcs, svc.Options(""))
	var buf bytes.Buffer
	if err = RenderPDF(ctx, &buf, doc); err != nil {
		return errors.Wrap(err, "rendering report")
	}

	total := decimal.Zero
	for _, calc := range calcs {
		total = total.Add(calc.FinalAmount)
	}

	msg := &core.EmailMessage{
		Subject:      fmt.Sprintf("Evaluation report: %s (%s)", ex.Name, ex.ExaminerID),
		TemplateName: emailTemplate,
		TemplateData: map[string]interface{}{
			"RecipientName": req.RecipientName,
			"ExaminerName":  ex.Name,
			"ExaminerCode":  ex.ExaminerID,
			"Calculations":  len(calcs),
			"TotalAmount":   format.Currency(total),
			"Note":          req.Note,
		},
	}
	for _, addr := range req.To {
		msg.To = append(msg.To, mail.Address{Address: addr})
	}
	if req.RecipientName != "" && len(msg.To) == 1 {
		msg.To[0].Name = req.RecipientName
	}
	if err = msg.Attach(&buf, doc.Filename, PDFContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}

	svc.mail.SendMessages(msg)
	return nil
}
