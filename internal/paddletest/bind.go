package paddletest

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ccxlv/paddle-go/internal/validation"
)

var validationMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"oneof":    "must be one of: {param}",
}

// bindBody decodes and validates a JSON body. On failure it writes a 400
// error envelope and returns false.
func bindBody(c *gin.Context, v any) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(v); err != nil {
			abortWithError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return false
		}
	}

	err := validation.Validator().Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		abortWithError(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return false
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "failed validation: " + fe.Tag()
		}

		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: strings.ReplaceAll(msg, "{param}", fe.Param()),
		})
	}

	abortWithError(c, http.StatusBadRequest, CodeInvalidField, "Invalid request.", fields...)

	return false
}

// listQuery is the part of a list request shared by every collection.
type listQuery struct {
	After   string
	PerPage int
	OrderBy string
}

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// bindList reads after, per_page and order_by. On failure it writes a 400
// error envelope and returns false.
func bindList(c *gin.Context) (listQuery, bool) {
	q := listQuery{
		After:   c.Query("after"),
		PerPage: defaultPerPage,
		OrderBy: c.DefaultQuery("order_by", "id[ASC]"),
	}

	if raw, ok := c.GetQuery("per_page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPerPage {
			abortWithError(c, http.StatusBadRequest, CodeInvalidField, "Invalid request.",
				FieldError{Field: "per_page", Message: "must be between 1 and " + strconv.Itoa(maxPerPage)})
			return q, false
		}
		q.PerPage = n
	}

	return q, true
}

// queryList splits a comma-separated query parameter.
func queryList(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	return strings.Split(raw, ",")
}

// includes reports whether the include parameter names relation.
func includes(c *gin.Context, relation string) bool {
	return slices.Contains(queryList(c, "include"), relation)
}

// matchAny reports whether filter is empty or contains value.
func matchAny[T ~string](filter []string, value T) bool {
	return len(filter) == 0 || slices.Contains(filter, string(value))
}
