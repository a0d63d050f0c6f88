package echoapi

import (
	"bytes"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/report"
)

type (
	reportApi struct {
		svc     *report.Service
		metrics *Metrics
	}

	customReportRequest struct {
		Title    string   `json:"title"`
		From     string   `json:"from"` // YYYY-MM-DD
		To       string   `json:"to"`
		Sections []string `json:"sections"`
		Filename string   `json:"filename"`
	}
)

func registerReportAPI(g, examinerGroup *echo.Group, deps ServerDeps) {
	api := reportApi{svc: deps.ReportSvc, metrics: deps.Metrics}

	examinerGroup.GET("/report", api.history)
	examinerGroup.POST("/report/custom", api.custom)
	examinerGroup.POST("/report/email", api.email)
	examinerGroup.GET("/export", api.exportExaminer)

	g.GET("/calculations/:id/report", api.single)
	g.GET("/reports/all", api.all)
	g.GET("/reports/export", api.exportAll)
}

// options reads the `filename` query param.
func (api *reportApi) options(ctx echo.Context) report.Options {
	return api.svc.Options(strings.TrimSpace(ctx.QueryParam("filename")))
}

// Handlers

func (api *reportApi) single(ctx echo.Context) error {
	doc, err := api.svc.SingleCalculation(ctx.Request().Context(), ctx.Param("id"), api.options(ctx))
	if err != nil {
		return errors.Wrap(err, "composing report")
	}
	return api.writePDF(ctx, doc)
}

func (api *reportApi) history(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	doc, err := api.svc.ExaminerHistory(ctx.Request().Context(), ex.ID, api.options(ctx))
	if err != nil {
		return errors.Wrap(err, "composing report")
	}
	return api.writePDF(ctx, doc)
}

func (api *reportApi) custom(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}

	var data customReportRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to customReportRequest")
	}
	opts := report.CustomOptions{
		Options:  api.svc.Options(strings.TrimSpace(data.Filename)),
		Title:    data.Title,
		Sections: data.Sections,
	}
	if opts.From, err = bindDate(data.From, "from"); err != nil {
		return err
	}
	if opts.To, err = bindDate(data.To, "to"); err != nil {
		return err
	}

	doc, err := api.svc.Custom(ctx.Request().Context(), ex.ID, opts)
	if err != nil {
		return errors.Wrap(err, "composing report")
	}
	return api.writePDF(ctx, doc)
}

func (api *reportApi) all(ctx echo.Context) error {
	doc, err := api.svc.AllExaminers(ctx.Request().Context(), api.options(ctx))
	if err != nil {
		return errors.Wrap(err, "composing report")
	}
	return api.writePDF(ctx, doc)
}

func (api *reportApi) email(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}

	var data report.EmailRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailRequest")
	}
	if err = api.svc.EmailHistory(ctx.Request().Context(), ex.ID, data); err != nil {
		return errors.Wrap(err, "emailing report")
	}
	api.metrics.reportGenerated(string(report.KindHistory), "email")
	return ctx.JSON(http.StatusAccepted, echo.Map{"success": "The report will be sent shortly."})
}

func (api *reportApi) exportExaminer(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	return api.writeXLSX(ctx, ex.ID, report.ExportFilename(ex.ExaminerID))
}

func (api *reportApi) exportAll(ctx echo.Context) error {
	return api.writeXLSX(ctx, "", "Examiner_History_All.xlsx")
}

// writePDF sends the rendered document; `?inline=1` asks the browser to display it.
func (api *reportApi) writePDF(ctx echo.Context, doc *report.Document) error {
	var buf bytes.Buffer
	if err := api.svc.RenderPDF(ctx.Request().Context(), &buf, doc); err != nil {
		return errors.Wrap(err, "rendering report")
	}
	api.metrics.reportGenerated(string(doc.Kind), "pdf")

	disposition := "attachment"
	if queryFlag(ctx, "inline") {
		disposition = "inline"
	}
	setContentDisposition(ctx, disposition, doc.Filename)
	return ctx.Blob(http.StatusOK, report.PDFContentType, buf.Bytes())
}

func (api *reportApi) writeXLSX(ctx echo.Context, examinerID, filename string) error {
	if name := strings.TrimSpace(ctx.QueryParam("filename")); name != "" {
		filename = name
	}
	var buf bytes.Buffer
	if err := api.svc.Export(ctx.Request().Context(), &buf, examinerID); err != nil {
		return errors.Wrap(err, "exporting history")
	}
	api.metrics.reportGenerated("history", "xlsx")

	setContentDisposition(ctx, "attachment", filename)
	return ctx.Blob(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

func setContentDisposition(ctx echo.Context, disposition, filename string) {
	ctx.Response().Header().Set(
		echo.HeaderContentDisposition,
		mime.FormatMediaType(disposition, map[string]string{"filename": filename}),
	)
}
