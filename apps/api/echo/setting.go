package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/setting"
)

type settingApi struct {
	store setting.Store
}

func registerSettingAPI(g *echo.Group, deps ServerDeps) {
	api := settingApi{store: deps.Settings}

	sg := g.Group("/settings")
	sg.GET("", api.list)
	sg.GET("/:key", api.retrieve)
	sg.PUT("/:key", api.update)
}

func (api *settingApi) list(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.All())
}

func (api *settingApi) retrieve(ctx echo.Context) error {
	key := ctx.Param("key")
	if !setting.IsKey(key) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"key": key, "value": api.store.Get(setting.Key(key))})
}

func (api *settingApi) update(ctx echo.Context) error {
	key := ctx.Param("key")
	if !setting.IsKey(key) {
		return errHttpNotFound
	}

	var data struct {
		Value string `json:"value"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding setting value")
	}

	st, err := api.store.Set(setting.UpdateSetting{Key: key, Value: data.Value})
	if err != nil {
		return errors.Wrap(err, "updating setting")
	}
	return ctx.JSON(http.StatusOK, st)
}
