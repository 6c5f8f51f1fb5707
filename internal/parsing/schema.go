package parsing

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const rootField = "(root)"

var loadSchemas = sync.OnceValues(func() (map[Site]*gojsonschema.Schema, error) {
	out := make(map[Site]*gojsonschema.Schema)
	for _, site := range []Site{SiteAnalysis, SiteQuestions, SiteFeedback} {
		data, err := schemaFS.ReadFile("schemas/" + string(site) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", site, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", site, err)
		}
		out[site] = schema
	}
	return out, nil
})

// validateSchema checks doc against the JSON schema of site.
func validateSchema(site Site, doc any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[site]
	if !ok {
		return fmt.Errorf("no schema registered for %s", site)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &MalformedResponseError{Site: site, Err: err}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, FieldError{Field: fieldPath(desc), Message: desc.Description()})
	}
	// gojsonschema walks object properties in map order
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &SchemaViolationError{
		Site:   site,
		Field:  fields[0].Field,
		Reason: fields[0].Message,
		All:    fields,
	}
}

func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}

	prop, ok := desc.Details()["property"].(string)
	if !ok || prop == "" {
		return field
	}
	if field == "" || field == rootField {
		return prop
	}
	return field + "." + prop
}
