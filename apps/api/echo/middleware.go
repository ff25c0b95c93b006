package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

// rolesMiddleware lets through callers whose token carries one of roles.
func rolesMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if core.ContainsString(roles, claims.Role) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware(user.RoleAdmin)
}

// courseAdminMiddleware lets through the roles that manage course content & cohorts.
func courseAdminMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware(user.RoleAdmin, user.RoleCourseAdmin)
}

// isCourseAdmin reports whether the caller may see unpublished content & quiz solutions.
func isCourseAdmin(ctx echo.Context) bool {
	claims, err := getContextClaims(ctx)
	return err == nil && (claims.Role == user.RoleAdmin || claims.Role == user.RoleCourseAdmin)
}

// ctxUserOrAdminMiddleware loads the `:id` user into the context for themselves or an admin.
// Other callers get a 404.
func ctxUserOrAdminMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}

			id := ctx.Param("id")
			if id != ctxUsr.ID && !ctxUsr.IsAdmin() {
				return errHttpNotFound
			}
			if id == ctxUsr.ID {
				ctx.Set(contextObjectKey, ctxUsr)
				return next(ctx)
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return err
			}
			ctx.Set(contextObjectKey, usr)
			return next(ctx)
		}
	}
}
