package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Contract is a compiled JSON schema for one backend payload shape.
type Contract struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile compiles a Go-literal schema; it panics on a malformed schema.
func MustCompile(name string, schema map[string]interface{}) *Contract {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("contract %s: %v", name, err))
	}
	return &Contract{name: name, schema: compiled}
}

// Validate checks a raw JSON document against the contract.
func (c *Contract) Validate(document []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%s: validation error: %w", c.name, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("%s: contract violated: %s", c.name, strings.Join(errs, "; "))
}

func (c *Contract) Name() string {
	return c.name
}

var facilityItem = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id"},
	"properties": map[string]interface{}{
		"id":        map[string]interface{}{"type": "integer"},
		"name":      map[string]interface{}{"type": []interface{}{"string", "null"}},
		"latitude":  map[string]interface{}{"type": []interface{}{"number", "null"}},
		"longitude": map[string]interface{}{"type": []interface{}{"number", "null"}},
	},
}

// FacilityPage is the contract of GET /pet_facilities/search.
var FacilityPage = MustCompile("facility-page", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"content", "totalElements"},
	"properties": map[string]interface{}{
		"content": map[string]interface{}{
			"type":  "array",
			"items": facilityItem,
		},
		"totalElements": map[string]interface{}{"type": "integer", "minimum": 0},
	},
})

// FacilityList is the contract of the bounds and favorites endpoints.
var FacilityList = MustCompile("facility-list", map[string]interface{}{
	"type":  "array",
	"items": facilityItem,
})

// StringList is the contract of the option-list and suggestion endpoints.
var StringList = MustCompile("string-list", map[string]interface{}{
	"type":  "array",
	"items": map[string]interface{}{"type": "string"},
})
