// Package schemas embeds the OpenAPI description of the repotext HTTP API.
package schemas

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPISpec is the raw YAML API description.
//
//go:embed openapi.yaml
var OpenAPISpec []byte

// JSON returns the API description re-encoded as JSON, for serving at
// /openapi.json.
func JSON() ([]byte, error) {
	doc, err := openapi3.NewLoader().LoadFromData(OpenAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	out, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode openapi spec: %w", err)
	}
	return out, nil
}
