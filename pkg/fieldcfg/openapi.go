package fieldcfg

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-docgen/pkg/block"
)

// Vendor extensions recognised when deriving fields from an OpenAPI schema.
const (
	extensionTypeKey         = "x-docgen-type"
	extensionSectionKey      = "x-docgen-section"
	extensionOrderKey        = "x-docgen-order"
	extensionAllowedTypesKey = "x-docgen-allowed-types"
	extensionRowsKey         = "x-docgen-rows"
)

// FromOpenAPI derives a field configuration from the JSON request body schema
// of one operation inside an OpenAPI document. Property ordering follows the
// numeric x-docgen-order extension when present, then property name.
func FromOpenAPI(ctx context.Context, raw []byte, operationID string) ([]Field, error) {
	if len(raw) == 0 {
		return nil, errors.New("fieldcfg: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("fieldcfg: load openapi document: %w", err)
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("fieldcfg: operation %q not found", operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return nil, fmt.Errorf("fieldcfg: operation %q has no JSON request schema", operationID)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	fields := make([]Field, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		fields = append(fields, fieldFromSchema(name, ref.Value, required[name]))
	}

	sort.SliceStable(fields, func(i, j int) bool {
		oi, oj := propertyOrder(schema.Properties[fields[i].Name]), propertyOrder(schema.Properties[fields[j].Name])
		if oi != oj {
			return oi < oj
		}
		return fields[i].Name < fields[j].Name
	})

	return validate(fields)
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{item.Get, item.Put, item.Post, item.Delete, item.Patch} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func fieldFromSchema(name string, schema *openapi3.Schema, required bool) Field {
	field := Field{
		Name:        name,
		Label:       schema.Title,
		Type:        deriveType(schema),
		Required:    required,
		Placeholder: schema.Description,
		Section:     stringExtension(schema.Extensions, extensionSectionKey),
		Rows:        intExtension(schema.Extensions, extensionRowsKey),
	}
	if field.Label == "" {
		field.Label = name
	}

	for _, value := range schema.Enum {
		literal := fmt.Sprintf("%v", value)
		field.Options = append(field.Options, Option{Value: literal, Label: literal})
	}
	if len(field.Options) > 0 && field.Type == TypeText {
		field.Type = TypeSelect
	}

	if field.Type == TypeBlocks {
		for _, kind := range listExtension(schema.Extensions, extensionAllowedTypesKey) {
			field.AllowedTypes = append(field.AllowedTypes, block.Kind(kind))
		}
	}
	return field
}

func deriveType(schema *openapi3.Schema) string {
	if override := stringExtension(schema.Extensions, extensionTypeKey); override != "" {
		return override
	}
	switch {
	case schema.Type.Is(openapi3.TypeArray):
		return TypeBlocks
	case schema.Type.Is(openapi3.TypeString) && schema.Format == "date":
		return TypeDate
	default:
		return TypeText
	}
}

func propertyOrder(ref *openapi3.SchemaRef) int {
	if ref == nil || ref.Value == nil {
		return 0
	}
	return intExtension(ref.Value.Extensions, extensionOrderKey)
}

func stringExtension(extensions map[string]any, key string) string {
	value, ok := extensions[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func intExtension(extensions map[string]any, key string) int {
	switch value := extensions[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}

func listExtension(extensions map[string]any, key string) []string {
	raw, ok := extensions[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, element := range raw {
		if s, ok := element.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
