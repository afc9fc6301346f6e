package router

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/docs"
)

// Every API route must be described in the generated swagger document.
func TestSwaggerDocCoversAPIRoutes(t *testing.T) {
	var doc struct {
		BasePath string                            `json:"basePath"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))
	require.Equal(t, "/api", doc.BasePath)

	s := newTestServer(t, 10)
	documented := 0
	for _, route := range s.e.Routes() {
		if !strings.HasPrefix(route.Path, doc.BasePath+"/") || strings.Contains(route.Path, "*") {
			continue
		}
		if route.Method == "echo_route_not_found" {
			continue
		}
		path := strings.ReplaceAll(strings.TrimPrefix(route.Path, doc.BasePath), ":id", "{id}")
		operations, ok := doc.Paths[path]
		if assert.True(t, ok, "%s is not documented", path) {
			assert.Contains(t, operations, strings.ToLower(route.Method), "%s %s is not documented", route.Method, path)
		}
		documented++
	}
	assert.Equal(t, 11, documented)
}
