package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/navigation"
)

type dashboardApi struct {
	calcsSvc     *calculation.Service
	examinersSvc *examiner.Service
}

func registerDashboardAPI(g *echo.Group, deps ServerDeps) {
	api := dashboardApi{calcsSvc: deps.CalculationSvc, examinersSvc: deps.ExaminerSvc}

	g.GET("/dashboard", api.dashboard)
	g.GET("/breadcrumbs", api.breadcrumbs)
}

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	dash, err := api.calcsSvc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	if dash.Examiners == nil {
		dash.Examiners = []calculation.ExaminerSummary{}
	}
	return ctx.JSON(http.StatusOK, dash)
}

// breadcrumbs returns the trail for the `path` query param.
// Examiner pages are labelled with the examiner's name when it can be found.
func (api *dashboardApi) breadcrumbs(ctx echo.Context) error {
	path := ctx.QueryParam("path")

	var name string
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 2 && segments[0] == "examiners" {
		if ex, err := api.examinersSvc.GetByID(ctx.Request().Context(), segments[1]); err == nil {
			name = ex.Name
		}
	}
	return ctx.JSON(http.StatusOK, navigation.Breadcrumbs(path, name))
}
