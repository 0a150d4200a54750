package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/fanta-optimizer/internal/api/validation"
	"github.com/stitts-dev/fanta-optimizer/pkg/utils"
)

const apiVersion = "1.2.0"

// DocsHandler serves the OpenAPI description of the service
type DocsHandler struct {
	doc []byte
	err error
}

func NewDocsHandler() *DocsHandler {
	doc, err := buildOpenAPI()
	return &DocsHandler{doc: doc, err: err}
}

// GetOpenAPI returns the OpenAPI 3 document
func (h *DocsHandler) GetOpenAPI(c *gin.Context) {
	if h.err != nil {
		utils.SendInternalError(c, "Failed to build API description")
		return
	}
	c.Header("Content-Disposition", `inline; filename="fanta-optimizer-api.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.doc)
}

// GetRoot points clients at the API description
func (h *DocsHandler) GetRoot(c *gin.Context) {
	c.Redirect(http.StatusFound, "/swagger.json")
}

func buildOpenAPI() ([]byte, error) {
	schemas, err := validation.SchemaComponents()
	if err != nil {
		return nil, err
	}

	jsonBody := func(ref string) gin.H {
		return gin.H{"application/json": gin.H{"schema": gin.H{"$ref": "#/components/schemas/" + ref}}}
	}
	errorResponses := gin.H{
		"400": gin.H{"description": "Invalid request or configuration"},
		"413": gin.H{"description": "Request body too large"},
		"422": gin.H{"description": "Role infeasible or budget exceeded"},
		"429": gin.H{"description": "Rate limited"},
	}
	withErrors := func(ok string) gin.H {
		responses := gin.H{"200": gin.H{"description": ok}}
		for code, r := range errorResponses {
			responses[code] = r
		}
		return responses
	}

	doc := gin.H{
		"openapi": "3.0.3",
		"info": gin.H{
			"title":       "Fanta Optimizer API",
			"version":     apiVersion,
			"description": "Builds the highest-scoring auction roster under per-role budgets, starter minimums, locks, excludes, preferences and acquired players.",
		},
		"paths": gin.H{
			"/api/v1/optimize": gin.H{"post": gin.H{
				"summary":     "Build the best roster",
				"requestBody": gin.H{"required": true, "content": jsonBody("OptimizeRequest")},
				"responses":   withErrors("Roster built"),
			}},
			"/api/v1/optimize/validate": gin.H{"post": gin.H{
				"summary":     "Validate a request and summarize the pool without solving",
				"requestBody": gin.H{"required": true, "content": jsonBody("OptimizeRequest")},
				"responses":   withErrors("Request is valid"),
			}},
			"/api/v1/builds": gin.H{"get": gin.H{
				"summary": "List recent builds",
				"parameters": []gin.H{{
					"name": "limit", "in": "query",
					"schema": gin.H{"type": "integer", "minimum": 1, "maximum": 100},
				}},
				"responses": gin.H{
					"200": gin.H{"description": "Build summaries, newest first"},
					"503": gin.H{"description": "Build history disabled"},
				},
			}},
			"/api/v1/builds/{id}": gin.H{"get": gin.H{
				"summary": "Fetch one build with its request and result",
				"parameters": []gin.H{{
					"name": "id", "in": "path", "required": true,
					"schema": gin.H{"type": "string", "format": "uuid"},
				}},
				"responses": gin.H{
					"200": gin.H{"description": "Build record"},
					"404": gin.H{"description": "Unknown build"},
				},
			}},
			"/health":  gin.H{"get": gin.H{"summary": "Liveness", "responses": gin.H{"200": gin.H{"description": "Alive"}}}},
			"/ready":   gin.H{"get": gin.H{"summary": "Readiness of backing stores", "responses": gin.H{"200": gin.H{"description": "Ready"}, "503": gin.H{"description": "Not ready"}}}},
			"/metrics": gin.H{"get": gin.H{"summary": "Prometheus metrics", "responses": gin.H{"200": gin.H{"description": "Metrics exposition"}}}},
		},
		"components": gin.H{"schemas": schemas},
	}
	return json.Marshal(doc)
}
