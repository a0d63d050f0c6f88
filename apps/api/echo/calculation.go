package echoapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
)

const (
	sheetField = "file"
	// legacy imports are whole JSON documents; keep them bounded
	maxLegacyImportSize = 10 << 20
)

type calculationApi struct {
	svc *calculation.Service
}

// calculationDetail is a calculation with its extracted evaluation data.
type calculationDetail struct {
	calculation.Calculation
	EvaluationData  calculation.EvaluationData `json:"evaluation_data"`
	EvaluationCount int                        `json:"evaluation_days_count"`
}

func registerCalculationAPI(g *echo.Group, deps ServerDeps) {
	api := calculationApi{svc: deps.CalculationSvc}

	cg := g.Group("/calculations")
	cg.POST("", api.create)
	cg.POST("/import", api.importSheet)
	cg.POST("/legacy", api.importLegacy)
	cg.GET("/:id", api.retrieve)
	cg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *calculationApi) create(ctx echo.Context) error {
	var data calculation.NewCalculation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCalculation")
	}

	calc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating calculation")
	}
	return ctx.JSON(http.StatusCreated, calc)
}

func (api *calculationApi) importSheet(ctx echo.Context) error {
	fh, err := ctx.FormFile(sheetField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "upload the spreadsheet in the \"file\" field")
	}
	rate, err := formDecimal(ctx, "evaluation_rate")
	if err != nil {
		return err
	}
	incentive, err := formDecimal(ctx, "incentive")
	if err != nil {
		return err
	}
	if incentive == nil {
		zero := decimal.Zero
		incentive = &zero
	}

	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded spreadsheet")
	}
	defer func() { _ = file.Close() }()

	calc, err := api.svc.ImportSheet(ctx.Request().Context(), calculation.SheetImport{
		ExaminerID:     strings.TrimSpace(ctx.FormValue("examiner_id")),
		CustomID:       ctx.FormValue("custom_id"),
		EvaluationRate: rate,
		Incentive:      *incentive,
		Filename:       fh.Filename,
		Content:        file,
	})
	if err != nil {
		return errors.Wrap(err, "importing spreadsheet")
	}
	return ctx.JSON(http.StatusCreated, calc)
}

func (api *calculationApi) importLegacy(ctx echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxLegacyImportSize))
	if err != nil {
		return errors.Wrap(err, "reading body")
	}
	docs, err := api.svc.ImportLegacy(ctx.Request().Context(), raw)
	if err != nil {
		return errors.Wrap(err, "importing legacy documents")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"imported": len(docs)})
}

func (api *calculationApi) retrieve(ctx echo.Context) error {
	calc, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding calculation")
	}
	return ctx.JSON(http.StatusOK, calculationDetail{
		Calculation:     calc,
		EvaluationData:  calculation.ExtractEvaluationData(calc),
		EvaluationCount: calc.EvaluationDaysCount(),
	})
}

func (api *calculationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting calculation")
	}
	return ctx.NoContent(http.StatusNoContent)
}
