// internal/board/validate.go
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrValidation = errors.New("JOB_VALIDATION_FAILED")

// A job needs a company or a role, and a canonical status.
const jobSchemaJSON = `{
	"type": "object",
	"properties": {
		"id":       {"type": "string", "minLength": 1},
		"company":  {"type": "string", "maxLength": 200},
		"role":     {"type": "string", "maxLength": 200},
		"location": {"type": "string", "maxLength": 200},
		"link":     {"type": "string", "maxLength": 2000},
		"notes":    {"type": "string", "maxLength": 20000},
		"status":   {"type": "string", "enum": ["Applied", "Interview", "Offer", "Rejected"]}
	},
	"required": ["id", "status"],
	"anyOf": [
		{"properties": {"company": {"type": "string", "pattern": "\\S"}}, "required": ["company"]},
		{"properties": {"role": {"type": "string", "pattern": "\\S"}}, "required": ["role"]}
	]
}`

var jobSchema = mustCompileSchema(jobSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("board: invalid job schema: %v", err))
	}
	return schema
}

// ValidateJob checks a job document against the job schema.
func ValidateJob(job Job) error {
	result, err := jobSchema.Validate(gojsonschema.NewGoLoader(job))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
}
