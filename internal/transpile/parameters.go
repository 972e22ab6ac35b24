package transpile

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/collection"
)

// pathParameters emits one required path parameter per {name} template found
// in the resolved segments. Repeated names are not collapsed. Hints are the
// URL's path variables and supply descriptions and examples by name.
func (r *Resolver) pathParameters(segments []string, hints []collection.Variable) openapi3.Parameters {
	var params openapi3.Parameters
	for _, seg := range segments {
		for _, m := range uriTemplateRe.FindAllStringSubmatch(seg, -1) {
			name := m[1]
			param := openapi3.NewPathParameter(name)
			schema := openapi3.NewStringSchema()
			if hint, ok := findVariable(hints, name); ok {
				param.Description = hint.Description.Text()
				if s, ok := hint.Value.(string); ok {
					schema.Example = r.Resolve(s)
				}
			}
			param.Schema = openapi3.NewSchemaRef("", schema)
			params = append(params, &openapi3.ParameterRef{Value: param})
		}
	}
	return params
}

// queryParameters emits one optional string query parameter per entry.
func (r *Resolver) queryParameters(query []collection.QueryParam) openapi3.Parameters {
	var params openapi3.Parameters
	for _, qp := range query {
		param := openapi3.NewQueryParameter(qp.Key)
		param.Description = qp.Description.Text()
		schema := openapi3.NewStringSchema()
		if qp.Value != nil {
			schema.Example = r.Resolve(*qp.Value)
		}
		param.Schema = openapi3.NewSchemaRef("", schema)
		params = append(params, &openapi3.ParameterRef{Value: param})
	}
	return params
}

func findVariable(vars []collection.Variable, key string) (collection.Variable, bool) {
	for _, v := range vars {
		if v.Key != nil && *v.Key == key {
			return v, true
		}
	}
	return collection.Variable{}, false
}
