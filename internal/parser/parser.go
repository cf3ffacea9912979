package parser

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"k6gen/internal/models"
)

// ErrMalformedSpec indicates the input document is not parseable as an
// OpenAPI v3 document at all. Generation aborts and no output is written.
var ErrMalformedSpec = errors.New("malformed OpenAPI document")

// Parser handles parsing OpenAPI specification files
type Parser struct {
	document libopenapi.Document
}

// ParseFile parses an OpenAPI specification file and returns a Parser instance
func ParseFile(filePath string) (*Parser, error) {
	specBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}

	document, err := libopenapi.NewDocument(specBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSpec, err)
	}

	return &Parser{document: document}, nil
}

// ServerURL returns the first server URL declared in the spec, falling back
// to http://localhost when none is declared.
func (p *Parser) ServerURL() (string, error) {
	model, errs := p.document.BuildV3Model()
	if errs != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSpec, errs)
	}

	servers := model.Model.Servers
	if len(servers) == 0 || servers[0] == nil || servers[0].URL == "" {
		return "http://localhost", nil
	}
	return servers[0].URL, nil
}

// Operations extracts all operations from the OpenAPI spec in document
// declaration order. Structurally incomplete path entries are skipped and
// reported as warnings rather than failing the whole run.
func (p *Parser) Operations() ([]models.Operation, []string, error) {
	model, errs := p.document.BuildV3Model()
	if errs != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSpec, errs)
	}

	docSecured := len(model.Model.Security) > 0

	var operations []models.Operation
	var warnings []string

	paths := model.Model.Paths
	if paths == nil || paths.PathItems == nil {
		return operations, warnings, nil
	}

	// Iterate over ordered map
	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		pathItem := pair.Value()
		if pathItem == nil {
			warnings = append(warnings, fmt.Sprintf("skipping path %s: not a path item object", path))
			continue
		}

		methods := pathItem.GetOperations()
		if methods == nil || methods.Len() == 0 {
			warnings = append(warnings, fmt.Sprintf("skipping path %s: no operations defined", path))
			continue
		}

		for mp := methods.First(); mp != nil; mp = mp.Next() {
			op := mp.Value()
			if op == nil {
				continue
			}
			method := strings.ToUpper(mp.Key())
			operations = append(operations, buildOperation(path, method, op, docSecured))
		}
	}

	return operations, warnings, nil
}

// buildOperation flattens a libopenapi operation into the generator's model.
func buildOperation(path, method string, op *v3.Operation, docSecured bool) models.Operation {
	requiresAuth := docSecured
	if op.Security != nil {
		requiresAuth = len(op.Security) > 0
	}

	operationID := op.OperationId
	if operationID == "" {
		operationID = fallbackOperationID(method, path)
	}

	var parameters []models.Parameter
	for _, param := range op.Parameters {
		if param == nil {
			continue
		}
		parameters = append(parameters, models.Parameter{
			Name:     param.Name,
			In:       param.In,
			Required: param.Required != nil && *param.Required,
		})
	}

	operation := models.Operation{
		Path:           path,
		Method:         method,
		OperationID:    operationID,
		Tags:           append([]string{}, op.Tags...),
		RequiresAuth:   requiresAuth,
		Parameters:     parameters,
		ResponseFields: responseFields(op.Responses),
	}

	if method == "POST" || method == "PUT" || method == "PATCH" {
		operation.BodyProperties = bodyProperties(op.RequestBody)
	}

	return operation
}

// fallbackOperationID derives an operation id from the method and path when
// the spec declares none.
func fallbackOperationID(method, path string) string {
	r := strings.NewReplacer("/", "_", "{", "", "}", "")
	return strings.ToLower(method) + "_" + r.Replace(path)
}

// responseFields returns the top-level field names of the first JSON success
// response: 200, 201, 202, then the default response.
func responseFields(responses *v3.Responses) []string {
	if responses == nil {
		return nil
	}

	for _, code := range []string{"200", "201", "202"} {
		if resp := findResponse(responses, code); resp != nil {
			if fields := mediaFields(resp); len(fields) > 0 {
				return fields
			}
		}
	}

	if responses.Default != nil {
		return mediaFields(responses.Default)
	}
	return nil
}

func findResponse(responses *v3.Responses, code string) *v3.Response {
	if responses.Codes == nil {
		return nil
	}
	for pair := responses.Codes.First(); pair != nil; pair = pair.Next() {
		if pair.Key() == code {
			return pair.Value()
		}
	}
	return nil
}

// mediaFields collects field names from the JSON media type of a response:
// schema properties in declaration order, then any raw example object's
// top-level keys (sorted, since decoded maps carry no order).
func mediaFields(resp *v3.Response) []string {
	if resp == nil || resp.Content == nil {
		return nil
	}

	for pair := resp.Content.First(); pair != nil; pair = pair.Next() {
		if !strings.Contains(strings.ToLower(pair.Key()), "json") {
			continue
		}
		media := pair.Value()
		if media == nil {
			continue
		}

		var fields []string
		seen := make(map[string]bool)

		if media.Schema != nil {
			if schema := media.Schema.Schema(); schema != nil && schema.Properties != nil {
				for prop := schema.Properties.First(); prop != nil; prop = prop.Next() {
					if !seen[prop.Key()] {
						seen[prop.Key()] = true
						fields = append(fields, prop.Key())
					}
				}
			}
		}

		if media.Example != nil {
			var example map[string]interface{}
			if err := media.Example.Decode(&example); err == nil {
				var keys []string
				for key := range example {
					if !seen[key] {
						keys = append(keys, key)
					}
				}
				sort.Strings(keys)
				fields = append(fields, keys...)
			}
		}

		return fields
	}
	return nil
}

// bodyProperties flattens the JSON request-body schema, preferring an
// application/json media type and falling back to the first declared one.
func bodyProperties(requestBody *v3.RequestBody) []models.BodyProperty {
	if requestBody == nil || requestBody.Content == nil {
		return nil
	}

	var media *v3.MediaType
	for pair := requestBody.Content.First(); pair != nil; pair = pair.Next() {
		if strings.Contains(strings.ToLower(pair.Key()), "json") {
			media = pair.Value()
			break
		}
	}
	if media == nil {
		if first := requestBody.Content.First(); first != nil {
			media = first.Value()
		}
	}
	if media == nil || media.Schema == nil {
		return nil
	}

	schema := media.Schema.Schema()
	if schema == nil || schema.Properties == nil {
		return nil
	}

	required := make(map[string]bool)
	for _, name := range schema.Required {
		required[name] = true
	}

	var properties []models.BodyProperty
	for pair := schema.Properties.First(); pair != nil; pair = pair.Next() {
		property := models.BodyProperty{
			Name:     pair.Key(),
			Required: required[pair.Key()],
		}
		if propSchema := propertySchema(pair.Value()); propSchema != nil {
			if len(propSchema.Type) > 0 {
				property.Type = propSchema.Type[0]
			}
			property.Format = propSchema.Format
			if propSchema.Default != nil {
				property.Default = jsScalar(propSchema.Default.Tag, propSchema.Default.Value)
			}
			if len(propSchema.Enum) > 0 && propSchema.Enum[0] != nil {
				property.Enum = jsScalar(propSchema.Enum[0].Tag, propSchema.Enum[0].Value)
			}
		}
		properties = append(properties, property)
	}
	return properties
}

func propertySchema(proxy *base.SchemaProxy) *base.Schema {
	if proxy == nil {
		return nil
	}
	return proxy.Schema()
}

// jsScalar renders a YAML scalar node as a JavaScript literal, quoting
// everything that is not a number or boolean.
func jsScalar(tag, value string) string {
	switch tag {
	case "!!int", "!!float", "!!bool":
		return value
	default:
		escaped := strings.ReplaceAll(value, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, "'", `\'`)
		return "'" + escaped + "'"
	}
}
