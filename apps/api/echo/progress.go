package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
)

type progressApi struct {
	svc *progress.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service) {
	api := progressApi{svc: svc}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.query)

	dg := pg.Group("/:courseId")
	dg.GET("", api.retrieve)
	dg.GET("/sessions", api.sessions)
	dg.GET("/interactions", api.interactions)
	dg.GET("/eligibility", api.eligibility)
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service) {
	api := progressApi{svc: svc}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/progress/:learnerId", api.adminQuery)
	ag.GET("/progress/:learnerId/:courseId/eligibility", api.adminEligibility)
	ag.DELETE("/progress/:learnerId/:courseId", api.adminReset)
}

// Handlers

func (api *progressApi) query(ctx echo.Context) error {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}
	return api.list(ctx, learner.ID)
}

func (api *progressApi) list(ctx echo.Context, learnerID string) error {
	var ordering Ordering
	ordering.Bind(ctx)

	recs, err := api.svc.ListProgress(ctx.Request().Context(), learnerID, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "listing progress")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *progressApi) retrieve(ctx echo.Context) error {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Progress(ctx.Request().Context(), learner.ID, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) sessions(ctx echo.Context) error {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.Sessions(ctx.Request().Context(), learner.ID, ctx.Param("courseId"), bindLimit(ctx))
	if err != nil {
		return errors.Wrap(err, "listing sessions")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *progressApi) interactions(ctx echo.Context) error {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}
	ins, err := api.svc.Interactions(ctx.Request().Context(), learner.ID, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "listing interactions")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *progressApi) eligibility(ctx echo.Context) error {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}
	return api.verdict(ctx, learner.ID)
}

func (api *progressApi) verdict(ctx echo.Context, learnerID string) error {
	v, err := api.svc.Eligibility(ctx.Request().Context(), learnerID, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "evaluating eligibility")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *progressApi) adminQuery(ctx echo.Context) error {
	return api.list(ctx, ctx.Param("learnerId"))
}

func (api *progressApi) adminEligibility(ctx echo.Context) error {
	return api.verdict(ctx, ctx.Param("learnerId"))
}

func (api *progressApi) adminReset(ctx echo.Context) error {
	if err := api.svc.Reset(ctx.Request().Context(), ctx.Param("learnerId"), ctx.Param("courseId")); err != nil {
		return errors.Wrap(err, "resetting progress")
	}
	return ctx.NoContent(http.StatusNoContent)
}
