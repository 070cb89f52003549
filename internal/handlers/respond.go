package handlers

import (
	"auth-account/internal/apperror"
	"auth-account/utils"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	// Report json field names in validation messages instead of Go names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// respondError writes err as {"detail": message}. Internal causes are logged
// and replaced by a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(ContextRequestID)),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), utils.CreateErrorResponse(appErr.Message))
}

// respondBindError reports a request body that could not be decoded or
// failed its binding tags.
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, utils.CreateErrorResponse(bindErrorMessage(err)))
}

func bindErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", fe.Field())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())
	}
	return "Invalid request body"
}
