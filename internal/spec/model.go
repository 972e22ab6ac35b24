package spec

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Inventory is a flat, sorted summary of an OpenAPI document used for
// reporting.
type Inventory struct {
	Title     string     `json:"title"`
	Version   string     `json:"version"`
	Servers   []string   `json:"servers,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Endpoints []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID                  string      `json:"id"` // method+path
	Method              HttpMethod  `json:"method"`
	Path                string      `json:"path"`
	OperationID         string      `json:"operationId,omitempty"`
	Summary             string      `json:"summary,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
	Parameters          []Parameter `json:"parameters,omitempty"`
	RequestContentTypes []string    `json:"requestContentTypes,omitempty"`
	ResponseCodes       []string    `json:"responseCodes"`
}

type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"` // path|query|header|cookie
	Required bool   `json:"required,omitempty"`
	Type     string `json:"type,omitempty"`
}
