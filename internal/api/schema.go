package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const listingSchemaURL = "listing.json"

// listingSchemaJSON describes a manually edited listing. Fields are the
// JSON names of models.Listing; scrape-time fields are not accepted.
const listingSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["title"],
  "properties": {
    "link":          {"type": "string"},
    "title":         {"type": "string", "minLength": 1},
    "location":      {"type": "string"},
    "source":        {"type": "string"},
    "status":        {"type": "string"},
    "posted_date":   {"type": ["string", "null"]},
    "deadline_date": {"type": ["string", "null"]},
    "keyword":       {"type": ["string", "null"]},
    "company":       {"type": "string"},
    "price":         {"type": "string"},
    "distance":      {"type": "string"},
    "category":      {"type": "string"}
  }
}`

type listingSchema struct {
	schema *jsonschema.Schema
}

func mustListingSchema() *listingSchema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(listingSchemaURL, strings.NewReader(listingSchemaJSON)); err != nil {
		panic(fmt.Sprintf("failed to add listing schema: %v", err))
	}
	schema, err := compiler.Compile(listingSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("failed to compile listing schema: %v", err))
	}
	return &listingSchema{schema: schema}
}

// Validate checks a request body against the listing schema.
func (s *listingSchema) Validate(body []byte) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}
	if err := s.schema.Validate(v); err != nil {
		return fmt.Errorf("listing failed validation: %w", err)
	}
	return nil
}
