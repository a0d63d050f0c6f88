package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
)

const (
	contextExaminerKey = "examiner"
	photoField         = "photo"
)

var errExaminerNotFoundInCtx = errors.New("examiner not found in echo.Context")

type examinerApi struct {
	svc      *examiner.Service
	calcsSvc *calculation.Service
}

// registerExaminerAPI returns the detail group (`/examiners/:id`) for other APIs to extend.
func registerExaminerAPI(g *echo.Group, deps ServerDeps) *echo.Group {
	api := examinerApi{svc: deps.ExaminerSvc, calcsSvc: deps.CalculationSvc}

	eg := g.Group("/examiners")
	eg.GET("", api.query)
	eg.POST("", api.create)

	// detail endpoints
	dg := eg.Group("/:id", examinerMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/photo", api.uploadPhoto)
	dg.GET("/photo", api.photo)
	dg.GET("/stats", api.stats)
	dg.GET("/calculations", api.history)
	return dg
}

// examinerMiddleware loads the examiner of the `:id` path param into the context.
func examinerMiddleware(svc *examiner.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ex, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding examiner")
			}
			ctx.Set(contextExaminerKey, ex)
			return next(ctx)
		}
	}
}

func contextExaminer(ctx echo.Context) (examiner.Examiner, error) {
	ex, ok := ctx.Get(contextExaminerKey).(examiner.Examiner)
	if !ok {
		return examiner.Examiner{}, errExaminerNotFoundInCtx
	}
	return ex, nil
}

// Handlers

func (api *examinerApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, examiner.OrderingFields...)

	examiners, err := api.svc.Query(ctx.Request().Context(), bindExaminerFilter(ctx), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying examiners")
	}
	if examiners == nil {
		examiners = []examiner.Examiner{}
	}
	return ctx.JSON(http.StatusOK, examiners)
}

func (api *examinerApi) create(ctx echo.Context) error {
	var data examiner.NewExaminer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExaminer")
	}

	ex, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating examiner")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *examinerApi) retrieve(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examinerApi) update(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}

	var data examiner.UpdateExaminer
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExaminer")
	}

	ex, err = api.svc.Update(ctx.Request().Context(), ex.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating examiner")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examinerApi) destroy(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ex.ID); err != nil {
		return errors.Wrap(err, "deleting examiner")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examinerApi) uploadPhoto(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile(photoField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "upload the photo in the \"photo\" field")
	}
	crop, err := bindCropBox(ctx)
	if err != nil {
		return err
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded photo")
	}
	defer func() { _ = file.Close() }()

	ex, err = api.svc.SetPhoto(ctx.Request().Context(), ex.ID, examiner.PhotoUpload{Content: file, Crop: crop})
	if err != nil {
		return errors.Wrap(err, "setting photo")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examinerApi) photo(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	photo, err := api.svc.GetPhoto(ctx.Request().Context(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "getting photo")
	}
	ctx.Response().Header().Set(echo.HeaderLastModified, photo.UpdatedAt.UTC().Format(http.TimeFormat))
	ctx.Response().Header().Set("Cache-Control", "private, max-age=300")
	return ctx.Blob(http.StatusOK, photo.ContentType, photo.Content)
}

func (api *examinerApi) stats(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	stats, err := api.calcsSvc.Stats(ctx.Request().Context(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *examinerApi) history(ctx echo.Context) error {
	ex, err := contextExaminer(ctx)
	if err != nil {
		return err
	}
	calcs, err := api.calcsSvc.History(ctx.Request().Context(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "loading history")
	}
	if calcs == nil {
		calcs = []calculation.Calculation{}
	}
	return ctx.JSON(http.StatusOK, calcs)
}
