package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/progress"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

type progressApi struct {
	svc progress.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc progress.Service) {
	api := progressApi{svc: svc}

	g.POST("/videos/:id/complete", api.completeVideo, jwt)
	g.GET("/progress", api.retrieve, jwt)
	g.GET("/users/:id/progress", api.retrieveForUser, jwt)
}

func (api *progressApi) completeVideo(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.CompleteVideo(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing video")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return api.courseProgress(ctx, claims.Subject)
}

// retrieveForUser is available to the user themselves & to admins.
func (api *progressApi) retrieveForUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	userID := ctx.Param("id")
	if userID != claims.Subject && claims.Role != user.RoleAdmin {
		return errHttpNotFound
	}
	return api.courseProgress(ctx, userID)
}

func (api *progressApi) courseProgress(ctx echo.Context, userID string) error {
	filter := new(progress.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	p, err := api.svc.CourseProgress(ctx.Request().Context(), userID, filter.CourseID)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, p)
}
