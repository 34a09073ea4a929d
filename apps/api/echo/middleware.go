package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core/project"
)

const ctxProjectIDKey = "projectID"

// projectMemberMiddleware lets through members of the :projectID project only.
// Unknown projects are reported the same way as foreign ones.
func projectMemberMiddleware(auth *authenticator, svc project.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := auth.contextClaims(ctx)
			if err != nil {
				return err
			}
			projectID, err := strconv.ParseInt(ctx.Param("projectID"), 10, 64)
			if err != nil {
				return errAccessDenied
			}
			if err = svc.CheckAccess(ctx.Request().Context(), claims.Subject, projectID); err != nil {
				if errors.Cause(err) == project.ErrAccessDenied {
					return errAccessDenied
				}
				return errors.Wrap(err, "checking project access")
			}
			ctx.Set(ctxProjectIDKey, projectID)
			return next(ctx)
		}
	}
}

func contextProjectID(ctx echo.Context) int64 {
	id, _ := ctx.Get(ctxProjectIDKey).(int64)
	return id
}
