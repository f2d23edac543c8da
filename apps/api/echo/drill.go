package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core/drill"
)

type drillApi struct {
	svc      *drill.Service
	validate *validator.Validate
}

func registerDrillAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := drillApi{
		svc:      deps.DrillSvc,
		validate: deps.Validate,
	}

	dg := g.Group("/drills")

	// the catalog is public: anonymous practice needs it too
	dg.GET("", api.catalog)
	dg.GET("/search", api.search)
	dg.GET("/:id", api.retrieve)

	// catalog management is admin-only
	ag := dg.Group("", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/import", api.bulkImport)
}

// Handlers

func (api *drillApi) catalog(ctx echo.Context) error {
	catalog, err := api.svc.Catalog(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading catalog")
	}
	return ctx.JSON(http.StatusOK, catalog)
}

func (api *drillApi) search(ctx echo.Context) error {
	filter := new(drill.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	drills, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "filtering drills")
	}
	if drills == nil {
		drills = []drill.Drill{}
	}
	return ctx.JSON(http.StatusOK, drills)
}

func (api *drillApi) retrieve(ctx echo.Context) error {
	d, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == drill.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting drill")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *drillApi) create(ctx echo.Context) error {
	var data drill.NewDrill
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDrill")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating drill")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *drillApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == drill.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting drill")
	}

	var data drill.UpdateDrill
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDrill")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	d, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating drill")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *drillApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == drill.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting drill")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// bulkImport accepts a raw JSON or CSV body; ?format= selects the parser,
// defaulting to the request content type.
func (api *drillApi) bulkImport(ctx echo.Context) error {
	format := drill.ImportFormat(ctx.QueryParam("format"))
	if format == "" {
		switch ctx.Request().Header.Get(echo.HeaderContentType) {
		case "text/csv":
			format = drill.FormatCSV
		default:
			format = drill.FormatJSON
		}
	}

	res, err := api.svc.Import(ctx.Request().Context(), format, ctx.Request().Body)
	if err != nil {
		switch errors.Cause(err) {
		case drill.ErrUnsupportedFormat, drill.ErrMissingColumns, drill.ErrInvalidJSON:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "importing drills")
	}
	return ctx.JSON(http.StatusOK, res)
}
