package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/chart"
	"github.com/trezcool/avaliacao/core/project"
	"github.com/trezcool/avaliacao/core/submission"
)

type projectApi struct {
	auth          *authenticator
	svc           project.Service
	chartSvc      chart.Service
	submissionSvc submission.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := projectApi{
		auth:          auth,
		svc:           deps.ProjectSvc,
		chartSvc:      deps.ChartSvc,
		submissionSvc: deps.SubmissionSvc,
	}

	pg := g.Group("/projects", jwt)
	pg.GET("", api.query)

	// detail endpoints
	dg := pg.Group("/:projectID", projectMemberMiddleware(auth, api.svc))
	dg.GET("/charts", api.overview)
	dg.POST("/charts", api.generateChart)
	dg.GET("/form", api.form)
	dg.GET("/submissions", api.history)
	dg.POST("/submissions", api.submit)
}

// Handlers

func (api *projectApi) query(ctx echo.Context) error {
	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return err
	}
	projects, err := api.svc.ListForUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing projects")
	}
	if projects == nil {
		projects = []project.Summary{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) overview(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context(), contextProjectID(ctx))
	if err != nil {
		return errors.Wrap(err, "getting project overview")
	}
	if ov.Questions == nil {
		ov.Questions = []project.QuestionSummary{}
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *projectApi) generateChart(ctx echo.Context) error {
	var req chart.Request
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to chart.Request")
	}
	req.Kind = chart.Kind(core.CleanString(string(req.Kind), true))
	req.Aggregation = chart.Aggregation(core.CleanString(string(req.Aggregation), true))

	doc, err := api.chartSvc.Generate(ctx.Request().Context(), contextProjectID(ctx), req)
	if err != nil {
		return errors.Wrap(err, "generating chart")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *projectApi) form(ctx echo.Context) error {
	form, err := api.svc.Form(ctx.Request().Context(), contextProjectID(ctx))
	if err != nil {
		return errors.Wrap(err, "getting submission form")
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *projectApi) history(ctx echo.Context) error {
	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return err
	}
	subs, err := api.submissionSvc.History(ctx.Request().Context(), contextProjectID(ctx), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting submission history")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *projectApi) submit(ctx echo.Context) error {
	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return err
	}
	var data submission.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	sub, err := api.submissionSvc.Submit(ctx.Request().Context(), contextProjectID(ctx), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "submitting answers")
	}
	return ctx.JSON(http.StatusCreated, sub)
}
