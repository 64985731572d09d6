// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import _ "embed"

// OpenAPI is docs/api/openapi.yaml.
//
//go:embed api/openapi.yaml
var OpenAPI []byte
