package openapi

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/tariff/pkg/routes"
)

var wildcard = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(\.\.\.)?\}`)

// AddGroups documents every route of the groups under Paths. Trailing
// wildcards ({key...}) become plain path parameters; parameters named id
// are UUIDs. Operations are tagged with the first path segment.
func (s *Spec) AddGroups(groups ...routes.Group) {
	for _, g := range groups {
		s.addGroup("", g)
	}
}

func (s *Spec) addGroup(parent string, g routes.Group) {
	prefix := parent + g.Prefix
	tag := strings.SplitN(strings.TrimPrefix(prefix, "/"), "/", 2)[0]

	for _, r := range g.Routes {
		path, params := convertPattern(prefix + r.Pattern)

		item, ok := s.Paths[path]
		if !ok {
			item = &PathItem{}
			s.Paths[path] = item
		}

		op := &Operation{
			Summary:    r.Method + " " + path,
			Parameters: params,
			Responses:  responsesFor(r.Method, len(params) > 0),
		}
		if tag != "" {
			op.Tags = []string{tag}
		}
		if r.Method == http.MethodPost && strings.HasSuffix(r.Pattern, "/search") {
			op.RequestBody = &RequestBody{
				Required: true,
				Content: map[string]*MediaType{
					"application/json": {Schema: &Schema{Ref: "#/components/schemas/PageRequest"}},
				},
			}
		}
		switch tag {
		case "jobs":
			if r.Method == http.MethodPost && len(params) > 0 {
				op.Responses[http.StatusConflict] = ResponseRef("Conflict")
			}
		case "sources":
			if strings.HasPrefix(r.Pattern, "/parse") || strings.HasPrefix(r.Pattern, "/match") {
				op.Responses[http.StatusUnsupportedMediaType] = ResponseRef("UnsupportedMediaType")
			}
		}

		switch r.Method {
		case http.MethodGet:
			item.Get = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodDelete:
			item.Delete = op
		}
	}

	for _, child := range g.Children {
		s.addGroup(prefix, child)
	}
}

func convertPattern(pattern string) (string, []*Parameter) {
	if pattern == "" {
		pattern = "/"
	}

	var params []*Parameter
	path := wildcard.ReplaceAllStringFunc(pattern, func(m string) string {
		name := wildcard.FindStringSubmatch(m)[1]
		format := ""
		if name == "id" {
			format = "uuid"
		}
		params = append(params, PathParam(name, format, ""))
		return "{" + name + "}"
	})
	return path, params
}

func responsesFor(method string, hasParams bool) map[int]*Response {
	responses := map[int]*Response{}

	switch method {
	case http.MethodDelete:
		responses[http.StatusNoContent] = &Response{Description: "Deleted"}
	case http.MethodPost:
		responses[http.StatusOK] = &Response{Description: "Success"}
		responses[http.StatusBadRequest] = ResponseRef("BadRequest")
	default:
		responses[http.StatusOK] = &Response{Description: "Success"}
	}

	if hasParams {
		responses[http.StatusNotFound] = ResponseRef("NotFound")
	}
	return responses
}
