package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dummyapi/internal/platform/config"
	"dummyapi/pkg/platform/httputil"
)

const openAPIVersion = "3.0.1"

// Document is the subset of an OpenAPI 3 document the service publishes.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Servers    []Server            `json:"servers"`
	Paths      map[string]PathItem `json:"paths"`
	Components map[string]any      `json:"components"`
}

type Info struct {
	Title       string  `json:"title"`
	Version     string  `json:"version"`
	Description string  `json:"description,omitempty"`
	Contact     Contact `json:"contact"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem map[string]Operation

type Operation struct {
	Summary     string `json:"summary"`
	OperationID string `json:"operationId"`
}

// Build assembles the document from application metadata.
func Build(app config.AppInfo) *Document {
	return &Document{
		OpenAPI: openAPIVersion,
		Info: Info{
			Title:       app.Name,
			Version:     app.Version,
			Description: app.Desc,
			Contact:     Contact{Name: app.DevName, Email: app.DevEmail},
		},
		Servers:    []Server{{URL: app.URL, Description: app.Desc}},
		Paths:      paths(),
		Components: map[string]any{},
	}
}

func paths() map[string]PathItem {
	return map[string]PathItem{
		"/dummy": {
			"get":  {Summary: "Find one dummy by id or name (JSON body)", OperationID: "findByCriteria"},
			"post": {Summary: "Create a dummy", OperationID: "createDummy"},
			"put":  {Summary: "Replace a dummy", OperationID: "updateDummy"},
		},
		"/dummy/dummy": {
			"get": {Summary: "List all dummies", OperationID: "listDummies"},
		},
		"/dummy/list": {
			"get": {Summary: "Filter dummies by id or name (JSON body)", OperationID: "filterByCriteria"},
		},
		"/dummy/search": {
			"post": {Summary: "Find one dummy by id or name", OperationID: "searchDummy"},
		},
		"/dummy/search/list": {
			"post": {Summary: "Filter dummies by id or name", OperationID: "searchDummies"},
		},
		"/dummy/{id}": {
			"get":    {Summary: "Get a dummy by id", OperationID: "getDummy"},
			"delete": {Summary: "Delete a dummy by id", OperationID: "deleteDummy"},
		},
		"/dummy/dni/{dni}": {
			"get": {Summary: "Get a dummy by national id", OperationID: "getDummyByNationalId"},
		},
	}
}

type Handler struct {
	doc *Document
}

func New(app config.AppInfo) *Handler {
	return &Handler{doc: Build(app)}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api-docs", h.HandleDocs)
}

func (h *Handler) HandleDocs(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.doc)
}
