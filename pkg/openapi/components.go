package openapi

// NewComponents creates Components with the shared request schemas and the
// error responses every handler emits through handlers.RespondError.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: -updated_at"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":           errorResponse("Invalid request"),
			"NotFound":             errorResponse("Resource not found"),
			"Conflict":             errorResponse("Resource conflict or inactive job"),
			"UnsupportedMediaType": errorResponse("Blob content is not text"),
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {
				Schema: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"error": {Type: "string", Description: "Error message"},
					},
				},
			},
		},
	}
}
