package paddle

import (
	"strings"

	"github.com/ccxlv/paddle-go/internal/validation"
)

// validateParams checks a params struct against its validate tags.
func validateParams(p any) error {
	violation := validation.Check(p)
	if violation == nil {
		return nil
	}

	return &ValidationError{
		Param:   violation.Field,
		Rule:    violation.Rule,
		Message: violation.Message,
		Value:   violation.Value,
	}
}

// validateID rejects blank resource identifiers before they end up in a path.
func validateID(param, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Param: param, Rule: "required", Message: "is required", Value: id}
	}

	return nil
}
