package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
)

type practiceApi struct {
	svc      *practice.Service
	drillSvc *drill.Service
	validate *validator.Validate
	conf     *core.Config
}

// registerPracticeAPI mounts the journal, session execution, achievements and
// planner routes. All of them accept anonymous requests (served from the
// device-scoped store) except the local-data migration, which needs an
// account to migrate into.
func registerPracticeAPI(g *echo.Group, jwt, jwtOptional echo.MiddlewareFunc, deps ServerDeps) {
	api := practiceApi{
		svc:      deps.PracticeSvc,
		drillSvc: deps.DrillSvc,
		validate: deps.Validate,
		conf:     deps.Conf,
	}

	pg := g.Group("/practice", jwtOptional)

	pg.GET("/sessions", api.journal)
	pg.POST("/sessions", api.logSession)
	pg.POST("/sessions/complete", api.completeSession)
	pg.GET("/sessions/:id", api.retrieveSession)
	pg.PUT("/sessions/:id", api.updateSession)
	pg.DELETE("/sessions/:id", api.destroySession)

	pg.GET("/achievements", api.achievements)
	pg.PUT("/achievements/:drillID", api.setAchievement)

	pg.POST("/plan", api.plan)

	g.POST("/practice/migrate-local", api.migrateLocal, jwt)
}

// Handlers

func (api *practiceApi) journal(ctx echo.Context) error {
	sessions, err := api.svc.Journal(ctx.Request().Context(), getContextUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying journal")
	}
	if sessions == nil {
		sessions = []practice.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *practiceApi) logSession(ctx echo.Context) error {
	var data practice.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Log(ctx.Request().Context(), getContextUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "logging session")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *practiceApi) retrieveSession(ctx echo.Context) error {
	s, err := api.svc.GetSession(ctx.Request().Context(), getContextUserID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == practice.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *practiceApi) updateSession(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID := getContextUserID(ctx)

	orig, err := api.svc.GetSession(reqCtx, userID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == practice.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting session")
	}

	var data practice.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(reqCtx, userID, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *practiceApi) destroySession(ctx echo.Context) error {
	err := api.svc.Delete(ctx.Request().Context(), getContextUserID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == practice.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// completeSession replays an executed drill session: it rebuilds the draft
// from the submitted drill ids, runs the executor over the achieved counts,
// and persists the finalized result with tier promotion.
func (api *practiceApi) completeSession(ctx echo.Context) error {
	var data CompleteSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteSessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	userID := getContextUserID(ctx)

	draft, err := api.svc.NewDraft(reqCtx, userID)
	if err != nil {
		return errors.Wrap(err, "starting draft")
	}
	for _, res := range data.Drills {
		d, err := api.drillSvc.GetByID(reqCtx, res.DrillID)
		if err != nil {
			if errors.Cause(err) == drill.ErrNotFound {
				return core.NewValidationError(nil,
					core.FieldError{Field: "drills", Error: "unknown drill: " + res.DrillID})
			}
			return errors.Wrap(err, "getting drill")
		}
		draft.AddDrill(d)
	}

	exec, err := practice.NewExecutor(draft, api.conf.Practice)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for _, res := range data.Drills {
		if err := exec.RecordResult(res.Achieved); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		exec.Next()
	}

	result, err := exec.CompleteSession()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := api.svc.CompleteSession(reqCtx, userID, result)
	if err != nil {
		return errors.Wrap(err, "saving completed session")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *practiceApi) achievements(ctx echo.Context) error {
	state, err := api.svc.Achievements(ctx.Request().Context(), getContextUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *practiceApi) setAchievement(ctx echo.Context) error {
	var data SetAchievementRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAchievementRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	state, err := api.svc.SetAchievement(ctx.Request().Context(), getContextUserID(ctx), ctx.Param("drillID"), data.Tier)
	if err != nil {
		return errors.Wrap(err, "setting achievement")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *practiceApi) plan(ctx echo.Context) error {
	var data PlanSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlanSessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	userID := getContextUserID(ctx)

	catalog, err := api.drillSvc.Catalog(reqCtx)
	if err != nil {
		return errors.Wrap(err, "loading catalog")
	}
	state, err := api.svc.Achievements(reqCtx, userID)
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}

	plan := practice.BuildPlan(catalog, state, data.PlanRequest, api.conf.Practice, nil)
	if data.Save {
		if _, err := api.svc.SavePlan(reqCtx, userID, plan); err != nil {
			return errors.Wrap(err, "saving plan")
		}
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *practiceApi) migrateLocal(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	migrated, err := api.svc.MigrateLocal(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "migrating local data")
	}
	return ctx.JSON(http.StatusOK, MigrateLocalResponse{Migrated: migrated})
}

type (
	CompleteSessionRequest struct {
		Drills []DrillResultRequest `json:"drills" validate:"required,min=1,dive"`
	}

	DrillResultRequest struct {
		DrillID  string `json:"drill_id" validate:"required"`
		Achieved int    `json:"achieved" validate:"min=0"`
	}

	SetAchievementRequest struct {
		Tier drill.Tier `json:"tier" validate:"required,tier"`
	}

	PlanSessionRequest struct {
		practice.PlanRequest
		Save bool `json:"save"`
	}

	MigrateLocalResponse struct {
		Migrated int `json:"migrated"`
	}
)

func (cr *CompleteSessionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(cr)
}

func (sr *SetAchievementRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}

func (pr *PlanSessionRequest) Validate(validate *validator.Validate) error {
	return pr.PlanRequest.Validate(validate)
}
