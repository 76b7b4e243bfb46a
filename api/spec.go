// Package api embeds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPISpec is the YAML OpenAPI document served at /openapi.json.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
