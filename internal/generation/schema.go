package generation

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/types"
)

// IdeationOutput is the structured result of the ideation model call.
type IdeationOutput struct {
	Angles    []queue.IdeationAngle `json:"angles"`
	Citations []types.Citation      `json:"citations"`
}

// ideationSchema validates the ideation model output before any angle is
// fanned out. Each angle needs at least three hook variants and a known
// platform.
const ideationSchema = `{
  "type": "object",
  "required": ["angles"],
  "properties": {
    "angles": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["angle", "hookVariants", "platform", "formulaUsed"],
        "properties": {
          "angle": { "type": "string", "minLength": 1 },
          "hookVariants": {
            "type": "array",
            "minItems": 3,
            "items": { "type": "string", "minLength": 1 }
          },
          "platform": {
            "type": "string",
            "enum": ["PINTEREST", "INSTAGRAM", "TIKTOK", "YOUTUBE", "LINKEDIN"]
          },
          "formulaUsed": { "type": "string", "minLength": 1 }
        }
      }
    },
    "citations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["claim", "source"],
        "properties": {
          "claim": { "type": "string" },
          "source": { "type": "string" }
        }
      }
    }
  }
}`

// parseIdeation validates raw model output against the ideation schema
// and decodes it. Schema violations come back as a ValidationError with
// per-field detail.
func parseIdeation(raw string) (*IdeationOutput, error) {
	schemaLoader := gojsonschema.NewStringLoader(ideationSchema)
	docLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, &errs.ValidationError{Subject: "ideation output", Cause: err}
	}

	if !result.Valid() {
		fields := make([]errs.FieldError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			fields = append(fields, errs.FieldError{Field: field, Message: desc.Description()})
		}
		return nil, &errs.ValidationError{Subject: "ideation output", Fields: fields}
	}

	var out IdeationOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &errs.ValidationError{Subject: "ideation output", Cause: err}
	}
	return &out, nil
}
