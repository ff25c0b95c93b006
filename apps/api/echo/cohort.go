package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

type cohortApi struct {
	svc      cohort.Service
	validate *validator.Validate
}

func registerCohortAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc cohort.Service, validate *validator.Validate) {
	api := cohortApi{svc: svc, validate: validate}
	write := courseAdminMiddleware()

	cg := g.Group("/cohorts", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, write)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, write)
	cg.DELETE("/:id", api.destroy, write)

	cg.GET("/:id/users", api.users, write)
	cg.POST("/:id/users", api.enroll, write)
	cg.DELETE("/:id/users/:userId", api.unenroll, write)

	cg.GET("/:id/leaderboard", api.leaderboard)
}

func (api *cohortApi) query(ctx echo.Context) error {
	filter := new(cohort.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []cohort.Cohort{})
	}
	filter.Clean()

	cohorts, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []cohort.Cohort{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *cohortApi) create(ctx echo.Context) error {
	var data cohort.Input
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cohortApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) update(ctx echo.Context) error {
	var data cohort.Input
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting cohort")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) users(ctx echo.Context) error {
	users, err := api.svc.Users(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing cohort users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *cohortApi) enroll(ctx echo.Context) error {
	var data cohort.EnrollInput
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), data.UserID); err != nil {
		return errors.Wrap(err, "enrolling user")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "User enrolled."})
}

func (api *cohortApi) unenroll(ctx echo.Context) error {
	if err := api.svc.Unenroll(ctx.Request().Context(), ctx.Param("id"), ctx.Param("userId")); err != nil {
		return errors.Wrap(err, "unenrolling user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// leaderboard ranks the cohort users; any aggregate failure is a 500 without partial data.
func (api *cohortApi) leaderboard(ctx echo.Context) error {
	lb, err := api.svc.Leaderboard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building leaderboard")
	}
	return ctx.JSON(http.StatusOK, lb)
}
