package spec

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// slot is one method position of a path item.
type slot struct {
	method HttpMethod
	op     **openapi3.Operation
}

// slots lists the operation fields of item in a stable order.
func slots(item *openapi3.PathItem) []slot {
	return []slot{
		{GET, &item.Get},
		{POST, &item.Post},
		{PUT, &item.Put},
		{DELETE, &item.Delete},
		{PATCH, &item.Patch},
		{HEAD, &item.Head},
		{OPTIONS, &item.Options},
		{TRACE, &item.Trace},
	}
}

// BuildInventory flattens doc into a list of endpoints sorted by path and
// method. Path-level parameters are merged under operation-level ones.
func BuildInventory(doc *openapi3.T) *Inventory {
	inv := &Inventory{}
	if doc == nil {
		return inv
	}
	if doc.Info != nil {
		inv.Title = safeStr(doc.Info.Title)
		inv.Version = safeStr(doc.Info.Version)
	}
	for _, s := range doc.Servers {
		if s != nil {
			inv.Servers = append(inv.Servers, safeStr(s.URL))
		}
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		baseParams := make(map[string]Parameter)
		for _, pref := range item.Parameters {
			if pm, ok := toParameter(pref); ok {
				baseParams[paramKey(pm.In, pm.Name)] = pm
			}
		}

		for _, s := range slots(item) {
			op := *s.op
			if op == nil {
				continue
			}
			merged := make(map[string]Parameter, len(baseParams))
			for k, v := range baseParams {
				merged[k] = v
			}
			for _, pref := range op.Parameters {
				if pm, ok := toParameter(pref); ok {
					merged[paramKey(pm.In, pm.Name)] = pm
				}
			}
			params := make([]Parameter, 0, len(merged))
			for _, v := range merged {
				params = append(params, v)
			}
			sort.Slice(params, func(i, j int) bool {
				if params[i].In == params[j].In {
					return params[i].Name < params[j].Name
				}
				return params[i].In < params[j].In
			})

			var contentTypes []string
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				contentTypes = sortedKeys(op.RequestBody.Value.Content)
			}

			inv.Endpoints = append(inv.Endpoints, Endpoint{
				ID:                  string(s.method) + " " + p,
				Method:              s.method,
				Path:                p,
				OperationID:         op.OperationID,
				Summary:             safeStr(op.Summary),
				Tags:                cleanTags(op.Tags),
				Parameters:          params,
				RequestContentTypes: contentTypes,
				ResponseCodes:       sortedKeys(op.Responses),
			})
		}
	}

	inv.Tags = collectSortedTags(inv.Endpoints)
	return inv
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func toParameter(pref *openapi3.ParameterRef) (Parameter, bool) {
	if pref == nil || pref.Value == nil {
		return Parameter{}, false
	}
	p := pref.Value
	pm := Parameter{Name: safeStr(p.Name), In: safeStr(p.In), Required: p.Required}
	if p.Schema != nil && p.Schema.Value != nil {
		pm.Type = p.Schema.Value.Type
	}
	return pm, true
}

func cleanTags(in []string) []string {
	var tags []string
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collectSortedTags(endpoints []Endpoint) []string {
	set := make(map[string]struct{})
	for _, ep := range endpoints {
		for _, t := range ep.Tags {
			set[t] = struct{}{}
		}
	}
	return sortedKeys(set)
}
