package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}
	write := courseAdminMiddleware()

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, write)
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse, write)
	cg.DELETE("/:id", api.destroyCourse, write)
	cg.GET("/:id/weeks", api.queryWeeks)
	cg.POST("/:id/weeks", api.createWeek, write)

	wg := g.Group("/weeks", jwt)
	wg.GET("/:id", api.retrieveWeek)
	wg.PUT("/:id", api.updateWeek, write)
	wg.PUT("/:id/publish", api.publishWeek, write)
	wg.DELETE("/:id", api.destroyWeek, write)
	wg.GET("/:id/modules", api.queryModules)
	wg.POST("/:id/modules", api.createModule, write)

	mg := g.Group("/modules", jwt)
	mg.GET("/:id", api.retrieveModule)
	mg.PUT("/:id", api.updateModule, write)
	mg.DELETE("/:id", api.destroyModule, write)
	mg.GET("/:id/videos", api.queryVideos)
	mg.POST("/:id/videos", api.createVideo, write)
	mg.GET("/:id/quizzes", api.queryQuizzes)
	mg.POST("/:id/quizzes", api.createQuiz, write)

	vg := g.Group("/videos", jwt)
	vg.GET("/:id", api.retrieveVideo)
	vg.PUT("/:id", api.updateVideo, write)
	vg.DELETE("/:id", api.destroyVideo, write)

	qg := g.Group("/quizzes", jwt)
	qg.GET("/:id", api.retrieveQuiz)
	qg.PUT("/:id", api.updateQuiz, write)
	qg.DELETE("/:id", api.destroyQuiz, write)
}

// Courses

func (api *courseApi) queryCourses(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) createCourse(ctx echo.Context) error {
	var data course.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) updateCourse(ctx echo.Context) error {
	var data course.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Weeks

// queryWeeks lists the course weeks; learners only see the published ones.
func (api *courseApi) queryWeeks(ctx echo.Context) error {
	weeks, err := api.svc.QueryWeeks(ctx.Request().Context(), ctx.Param("id"), !isCourseAdmin(ctx))
	if err != nil {
		return errors.Wrap(err, "querying weeks")
	}
	if weeks == nil {
		weeks = []course.Week{}
	}
	return ctx.JSON(http.StatusOK, weeks)
}

func (api *courseApi) createWeek(ctx echo.Context) error {
	var data course.WeekInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	w, err := api.svc.CreateWeek(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating week")
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *courseApi) retrieveWeek(ctx echo.Context) error {
	w, err := api.svc.GetWeek(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !w.IsPublished && !isCourseAdmin(ctx) {
		return course.ErrWeekNotFound
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *courseApi) updateWeek(ctx echo.Context) error {
	var data course.WeekInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	w, err := api.svc.UpdateWeek(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating week")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *courseApi) publishWeek(ctx echo.Context) error {
	var data course.PublishInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	w, err := api.svc.SetWeekPublished(ctx.Request().Context(), ctx.Param("id"), *data.IsPublished)
	if err != nil {
		return errors.Wrap(err, "publishing week")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *courseApi) destroyWeek(ctx echo.Context) error {
	if err := api.svc.DeleteWeek(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting week")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Modules

func (api *courseApi) queryModules(ctx echo.Context) error {
	modules, err := api.svc.QueryModules(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *courseApi) createModule(ctx echo.Context) error {
	var data course.ModuleInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	m, err := api.svc.CreateModule(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *courseApi) retrieveModule(ctx echo.Context) error {
	m, err := api.svc.GetModule(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *courseApi) updateModule(ctx echo.Context) error {
	var data course.ModuleInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	m, err := api.svc.UpdateModule(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *courseApi) destroyModule(ctx echo.Context) error {
	if err := api.svc.DeleteModule(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Videos

func (api *courseApi) queryVideos(ctx echo.Context) error {
	videos, err := api.svc.QueryVideos(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying videos")
	}
	if videos == nil {
		videos = []course.Video{}
	}
	return ctx.JSON(http.StatusOK, videos)
}

func (api *courseApi) createVideo(ctx echo.Context) error {
	var data course.VideoInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	v, err := api.svc.CreateVideo(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating video")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *courseApi) retrieveVideo(ctx echo.Context) error {
	v, err := api.svc.GetVideo(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *courseApi) updateVideo(ctx echo.Context) error {
	var data course.VideoInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	v, err := api.svc.UpdateVideo(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating video")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *courseApi) destroyVideo(ctx echo.Context) error {
	if err := api.svc.DeleteVideo(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting video")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Quizzes

// quizResponse hides the correct answers from learners.
func quizResponse(ctx echo.Context, q course.Quiz) interface{} {
	if isCourseAdmin(ctx) {
		return q
	}
	return q.Public()
}

func (api *courseApi) queryQuizzes(ctx echo.Context) error {
	quizzes, err := api.svc.QueryQuizzes(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	res := make([]interface{}, 0, len(quizzes))
	for _, q := range quizzes {
		res = append(res, quizResponse(ctx, q))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *courseApi) createQuiz(ctx echo.Context) error {
	var data course.QuizInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	q, err := api.svc.CreateQuiz(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *courseApi) retrieveQuiz(ctx echo.Context) error {
	q, err := api.svc.GetQuiz(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, quizResponse(ctx, q))
}

func (api *courseApi) updateQuiz(ctx echo.Context) error {
	var data course.QuizInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	q, err := api.svc.UpdateQuiz(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *courseApi) destroyQuiz(ctx echo.Context) error {
	if err := api.svc.DeleteQuiz(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}
