package transpile

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/sirupsen/logrus"
)

const defaultRequestName = "<request>"

// successCodes are the response codes that count as a documented success.
var successCodes = []string{"200", "201", "202", "203", "204", "205", "206", "207", "208", "226"}

// buildOperation turns one request leaf into a server entry, a path item and,
// when the method is supported, an operation in that path item.
func (st *state) buildOperation(item *collection.Item, tags tagStack) {
	req := item.Request
	if req == nil {
		return
	}
	name := item.Name
	if name == "" {
		name = defaultRequestName
	}
	log := st.log.WithField("request", name)

	if req.URL == nil {
		log.Debug("request has no url")
		return
	}
	st.registerServer(req.URL)
	if req.URL.Path == nil {
		log.Debug("request has no path")
		return
	}

	segments := st.pathSegments(req.URL.Path)
	key := "/" + strings.Join(segments, "/")
	pathItem, ok := st.doc.Paths[key]
	if !ok {
		pathItem = &openapi3.PathItem{
			Parameters: st.resolver.pathParameters(segments, req.URL.Variable),
		}
		st.doc.Paths[key] = pathItem
	}

	op := openapi3.NewOperation()
	op.Summary = name
	op.Description = name
	if text := req.Description.Text(); text != "" {
		op.Description = text
	}
	if len(tags) > 0 {
		op.Tags = append([]string(nil), tags...)
	}
	op.Parameters = st.resolver.queryParameters(req.URL.Query)
	if req.Body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: st.requestBody(req)}
	}
	op.Responses = st.responses(item.Responses)

	if req.Method == "" {
		log.Debug("request has no method")
		return
	}
	op.OperationID = st.ids.Next(name)

	method := strings.ToLower(req.Method)
	log = log.WithFields(logrus.Fields{"method": method, "path": key})
	slot := operationSlot(pathItem, method)
	if slot == nil {
		log.Warn("unsupported method; request dropped")
		return
	}
	if *slot != nil {
		log.WithField("replaced", (*slot).OperationID).Warn("operation already defined for path; replacing it")
	}
	*slot = op
	log.WithField("operationId", op.OperationID).Debug("added operation")
}

// registerServer adds the URL's scheme and host to the server list unless an
// identical server URL is already present.
func (st *state) registerServer(u *collection.URL) {
	if len(u.Host) == 0 {
		return
	}
	raw := strings.Join(u.Host, ".")
	if u.Protocol != "" {
		raw = u.Protocol + "://" + raw
	}
	serverURL := st.resolver.Resolve(raw)
	for _, srv := range st.doc.Servers {
		if srv.URL == serverURL {
			return
		}
	}
	st.doc.Servers = append(st.doc.Servers, &openapi3.Server{URL: serverURL})
}

// pathSegments resolves each segment in path mode and rewrites ":name"
// segments into "{name}" templates.
func (st *state) pathSegments(path []collection.PathSegment) []string {
	segments := make([]string, len(path))
	for i, p := range path {
		seg := st.resolver.ResolvePath(p.Value)
		if rest, ok := strings.CutPrefix(seg, ":"); ok {
			seg = "{" + rest + "}"
		}
		segments[i] = seg
	}
	return segments
}

// requestBody renders the request payload under a single media type. An
// explicit Content-Type header decides the key over the inferred one.
func (st *state) requestBody(req *collection.Request) *openapi3.RequestBody {
	p := st.resolver.requestPayload(req.Body)
	if ct := headerContentType(req.Header); ct != "" {
		p.contentType = ct
	}
	mt := p.mediaType()
	if p.hasExample {
		mt.Example = p.example
	}
	return openapi3.NewRequestBody().WithContent(openapi3.Content{p.contentType: mt})
}

// responses builds the response map from the saved examples and adds an empty
// 200 when none of them documents a success.
func (st *state) responses(examples []collection.Response) openapi3.Responses {
	out := openapi3.Responses{}
	for _, ex := range examples {
		if ex.Code == nil {
			continue
		}
		out[strconv.Itoa(*ex.Code)] = &openapi3.ResponseRef{Value: st.response(ex)}
	}
	for _, code := range successCodes {
		if _, ok := out[code]; ok {
			return out
		}
	}
	out["200"] = &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("")}
	return out
}

func (st *state) response(ex collection.Response) *openapi3.Response {
	var name string
	if ex.Name != nil {
		name = *ex.Name
	}
	resp := openapi3.NewResponse().WithDescription(name)
	if ex.Body == nil {
		return resp
	}
	p := st.resolver.responsePayload(*ex.Body)
	if ct := headerContentType(ex.Header); ct != "" {
		p.contentType = ct
	}
	mt := p.mediaType()
	if ex.Name != nil {
		mt.Examples = openapi3.Examples{
			name: &openapi3.ExampleRef{Value: openapi3.NewExample(p.example)},
		}
	} else {
		mt.Example = p.example
	}
	return resp.WithContent(openapi3.Content{p.contentType: mt})
}

// operationSlot returns the path item field for a lower-case method, or nil
// when the method has no slot.
func operationSlot(item *openapi3.PathItem, method string) **openapi3.Operation {
	switch method {
	case "get":
		return &item.Get
	case "post":
		return &item.Post
	case "put":
		return &item.Put
	case "delete":
		return &item.Delete
	case "patch":
		return &item.Patch
	case "options":
		return &item.Options
	case "trace":
		return &item.Trace
	default:
		return nil
	}
}
