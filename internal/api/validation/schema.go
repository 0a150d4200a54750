package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

const optimizeRequestSchema = `{
  "type": "object",
  "required": ["players", "config"],
  "properties": {
    "players": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/player"}},
    "config": {"$ref": "#/definitions/config"},
    "acquired": {"type": "array", "items": {"$ref": "#/definitions/acquired"}}
  },
  "definitions": {
    "role": {"enum": ["P", "D", "C", "A"]},
    "player": {
      "type": "object",
      "required": ["id", "name", "team", "role", "cost", "rating", "starter"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "team": {"type": "string"},
        "role": {"$ref": "#/definitions/role"},
        "cost": {"type": "integer", "minimum": 0},
        "rating": {"type": "number", "minimum": 0, "maximum": 100},
        "starter": {"type": "boolean"}
      }
    },
    "percentages": {
      "type": "object",
      "required": ["P", "D", "C", "A"],
      "additionalProperties": false,
      "properties": {
        "P": {"type": "number", "minimum": 0},
        "D": {"type": "number", "minimum": 0},
        "C": {"type": "number", "minimum": 0},
        "A": {"type": "number", "minimum": 0}
      }
    },
    "counts": {
      "type": "object",
      "required": ["P", "D", "C", "A"],
      "additionalProperties": false,
      "properties": {
        "P": {"type": "integer", "minimum": 1},
        "D": {"type": "integer", "minimum": 1},
        "C": {"type": "integer", "minimum": 1},
        "A": {"type": "integer", "minimum": 1}
      }
    },
    "config": {
      "type": "object",
      "required": ["totalBudget", "rolePercentages", "roleCounts", "minStarterPct"],
      "properties": {
        "totalBudget": {"type": "integer", "minimum": 1},
        "rolePercentages": {"$ref": "#/definitions/percentages"},
        "roleCounts": {"$ref": "#/definitions/counts"},
        "minStarterPct": {"type": "number", "minimum": 0, "maximum": 100},
        "starterBoost": {"type": "number"},
        "constraints": {
          "type": "object",
          "properties": {
            "locks": {"type": "array", "items": {"type": "string"}},
            "excludes": {"type": "array", "items": {"type": "string"}},
            "preferIds": {"type": "array", "items": {"type": "string"}},
            "preferTeams": {"type": "array", "items": {"type": "string"}},
            "preferBonus": {"type": "number"}
          }
        }
      }
    },
    "acquired": {
      "type": "object",
      "required": ["id", "price"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "price": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// percentageTolerance is how far the role percentages may drift from 100
const percentageTolerance = 1e-6

var schemaLoader = gojsonschema.NewStringLoader(optimizeRequestSchema)

// Error is a request that failed schema or semantic validation
type Error struct {
	Message string
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
}

// ParseOptimizeRequest validates a JSON optimize request and decodes it
func ParseOptimizeRequest(raw []byte) (*optimizer.Request, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &Error{Message: "Malformed request body", Details: []string{err.Error()}}
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return nil, &Error{Message: "Invalid request body", Details: details}
	}

	var req optimizer.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &Error{Message: "Malformed request body", Details: []string{err.Error()}}
	}
	if req.Acquired == nil {
		req.Acquired = []optimizer.Acquired{}
	}

	sum := 0.0
	for _, r := range optimizer.AllRoles {
		sum += req.Config.RolePercentages[r]
	}
	if math.Abs(sum-100) > percentageTolerance {
		return nil, &Error{
			Message: "rolePercentages must sum to 100",
			Details: []string{fmt.Sprintf("got %v", sum)},
		}
	}
	return &req, nil
}

// SchemaComponents returns the request schema as OpenAPI components: the shared
// definitions keyed by name plus the root object under "OptimizeRequest".
func SchemaComponents() (map[string]json.RawMessage, error) {
	rewritten := strings.ReplaceAll(optimizeRequestSchema, "#/definitions/", "#/components/schemas/")

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rewritten), &root); err != nil {
		return nil, fmt.Errorf("failed to decode request schema: %w", err)
	}
	components := make(map[string]json.RawMessage)
	if defs, ok := root["definitions"]; ok {
		if err := json.Unmarshal(defs, &components); err != nil {
			return nil, fmt.Errorf("failed to decode schema definitions: %w", err)
		}
		delete(root, "definitions")
	}

	request, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request schema: %w", err)
	}
	components["OptimizeRequest"] = request
	return components, nil
}
