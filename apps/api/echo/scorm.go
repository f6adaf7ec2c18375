package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
)

type (
	initializeRequest struct {
		CourseID string `json:"courseId" validate:"required"`
	}

	valueQuery struct {
		CourseID string `json:"courseId" validate:"required"`
		Element  string `json:"element" validate:"required,cmielement"`
	}

	valueRequest struct {
		CourseID string `json:"courseId" validate:"required"`
		Element  string `json:"element" validate:"required"`
		Value    string `json:"value"`
	}

	commitRequest struct {
		CourseID  string    `json:"courseId" validate:"required"`
		SessionID string    `json:"sessionId"`
		Data      cmi.Delta `json:"data"`
	}

	interactionRequest struct {
		CourseID    string          `json:"courseId" validate:"required"`
		Interaction cmi.Interaction `json:"interaction"`
	}
)

func (r *initializeRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *valueQuery) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *valueRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *commitRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *interactionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type scormApi struct {
	svc      *progress.Service
	courses  course.Registry
	validate *validator.Validate
}

func registerScormAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *progress.Service,
	courses course.Registry,
	validate *validator.Validate,
) {
	api := scormApi{
		svc:      svc,
		courses:  courses,
		validate: validate,
	}

	sg := g.Group("/scorm", jwt)
	sg.POST("/initialize", api.initialize)
	sg.GET("/value", api.getValue)
	sg.POST("/value", api.setValue)
	sg.POST("/commit", api.commit)
	sg.POST("/finish", api.finish)
	sg.POST("/interactions", api.recordInteraction)
	sg.GET("/courses", api.listCourses)
	sg.GET("/courses/:id", api.retrieveCourse)
}

// Handlers

func (api *scormApi) initialize(ctx echo.Context) error {
	var data initializeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to initializeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	client := session.Client{
		IPAddress: ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}
	launch, err := api.svc.Initialize(ctx.Request().Context(), learner, data.CourseID, client)
	if err != nil {
		return errors.Wrap(err, "initializing course")
	}
	return ctx.JSON(http.StatusOK, launch)
}

func (api *scormApi) getValue(ctx echo.Context) error {
	data := valueQuery{
		CourseID: ctx.QueryParam("courseId"),
		Element:  ctx.QueryParam("element"),
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	val, err := api.svc.GetValue(ctx.Request().Context(), learner, data.CourseID, data.Element)
	if err != nil {
		return errors.Wrap(err, "getting value")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"value": val})
}

func (api *scormApi) setValue(ctx echo.Context) error {
	var data valueRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to valueRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.SetValue(ctx.Request().Context(), learner.ID, data.CourseID, data.Element, data.Value); err != nil {
		return errors.Wrap(err, "setting value")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (api *scormApi) commit(ctx echo.Context) error {
	var data commitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to commitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	rec, err := api.svc.Commit(ctx.Request().Context(), learner.ID, data.CourseID, data.Data)
	if err != nil {
		return errors.Wrap(err, "committing")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "progress": rec})
}

func (api *scormApi) finish(ctx echo.Context) error {
	var data commitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to commitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	rec, err := api.svc.Finish(ctx.Request().Context(), learner.ID, data.CourseID, data.SessionID, data.Data)
	if err != nil {
		return errors.Wrap(err, "finishing")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "progress": rec})
}

func (api *scormApi) recordInteraction(ctx echo.Context) error {
	var data interactionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to interactionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	learner, err := getContextLearner(ctx)
	if err != nil {
		return err
	}

	in, err := api.svc.RecordInteraction(ctx.Request().Context(), learner.ID, data.CourseID, data.Interaction)
	if err != nil {
		return errors.Wrap(err, "recording interaction")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "interaction": in})
}

func (api *scormApi) listCourses(ctx echo.Context) error {
	courses, err := api.courses.ListCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	active := make([]course.Course, 0, len(courses))
	for _, c := range courses {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return ctx.JSON(http.StatusOK, active)
}

func (api *scormApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.courses.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if !c.IsActive {
		return course.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, c)
}
