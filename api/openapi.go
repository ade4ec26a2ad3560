// Package api holds the OpenAPI contract for the time service.
package api

import _ "embed"

// OpenAPISpec is the contract for GET /time in OpenAPI 3.0 YAML.
//
//go:embed time-service.openapi.yaml
var OpenAPISpec []byte
