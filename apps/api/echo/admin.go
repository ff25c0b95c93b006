package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

type adminApi struct {
	publisher *course.Publisher
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, publisher *course.Publisher) {
	api := adminApi{publisher: publisher}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.POST("/auto-publish", api.autoPublish)
}

// autoPublish runs the weekly publication immediately.
func (api *adminApi) autoPublish(ctx echo.Context) error {
	report, err := api.publisher.AutoPublish(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "auto-publishing weeks")
	}
	return ctx.JSON(http.StatusOK, report)
}
