package handlers

import (
	"net/http"
	"strings"

	"canvasSync/internal/errs"
	"canvasSync/internal/models"
	"canvasSync/internal/msgs"
	"canvasSync/internal/utils"

	"github.com/gin-gonic/gin"
)

func (rh *RestHandler) MustAuthenticateMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		jwtToken := ctx.GetHeader("Authorization")
		if jwtToken != "" {
			if strings.Contains(jwtToken, "Bearer") {
				jwtToken = strings.Replace(jwtToken, "Bearer ", "", 1)
			}
		}

		if jwtToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  []error{errs.ErrUnauthorized},
			})
			return
		}

		claims, err := utils.VerifyToken(jwtToken, utils.GetJwtKey())
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  []error{errs.ErrUnauthorized},
			})
			return
		}

		ctx.Set("user_id", claims.ID)
		ctx.Set("user_email", claims.Email)
		ctx.Set("authenticated", true)
		ctx.Next()
	}
}
