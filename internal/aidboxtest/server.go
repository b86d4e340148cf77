// Package aidboxtest runs an in-process stand-in for an Aidbox server:
// attribute schemas, resource reads and searches, and the id_token
// authorization redirect.
package aidboxtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Default credentials accepted by the authorization endpoint.
const (
	Email    = "jane@example.com"
	Password = "secret"
	Token    = "test-token"
)

// RecordedRequest is a request the server received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

// Server is a fake Aidbox server.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	token      string
	attributes map[string][]string
	resources  map[string][]map[string]any
	requests   []RecordedRequest
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	server := &Server{
		token:      Token,
		attributes: map[string][]string{},
		resources:  map[string][]map[string]any{},
	}

	server.Server = httptest.NewServer(http.HandlerFunc(server.handle))
	t.Cleanup(server.Close)

	return server
}

// SetToken changes the token issued by the authorization endpoint and
// required on every other request.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// AddAttributes registers attribute paths (camelCase, as the server stores
// them) for entity.
func (s *Server) AddAttributes(entity string, paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attributes[entity] = append(s.attributes[entity], paths...)
}

// AddResource stores a resource. Its keys are served as given.
func (s *Server) AddResource(resourceType string, resource map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resources[resourceType] = append(s.resources[resourceType], resource)
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]RecordedRequest, len(s.requests))
	copy(requests, s.requests)

	return requests
}

// RequestsTo returns the requests whose path equals path.
func (s *Server) RequestsTo(path string) []RecordedRequest {
	var matching []RecordedRequest

	for _, req := range s.Requests() {
		if req.Path == path {
			matching = append(matching, req)
		}
	}

	return matching
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
	})
	token := s.token
	s.mu.Unlock()

	if r.URL.Path == "/oauth2/authorize" {
		s.authorize(w, r, token)

		return
	}

	if r.Header.Get("Authorization") != "Bearer "+token {
		writeJSON(w, http.StatusUnauthorized, outcome("not-authorized"))

		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, outcome("not-supported"))

		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "Attribute":
		s.attributeBundle(w, r.URL.Query().Get("entity"))
	case len(parts) == 1:
		s.search(w, parts[0], r.URL.Query())
	case len(parts) == 2:
		s.read(w, parts[0], parts[1])
	default:
		writeJSON(w, http.StatusNotFound, outcome("not-found"))
	}
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request, token string) {
	err := r.ParseForm()
	if err != nil || r.PostForm.Get("email") != Email || r.PostForm.Get("password") != Password {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Invalid email or password</body></html>"))

		return
	}

	w.Header().Set("Location", "http://localhost/callback#id_token="+url.QueryEscape(token)+"&token_type=bearer")
	w.WriteHeader(http.StatusFound)
}

func (s *Server) attributeBundle(w http.ResponseWriter, entity string) {
	s.mu.Lock()
	paths := append([]string(nil), s.attributes[entity]...)
	s.mu.Unlock()

	resources := make([]map[string]any, 0, len(paths))
	for _, path := range paths {
		resources = append(resources, map[string]any{
			"resourceType": "Attribute",
			"id":           entity + "." + path,
			"path":         []any{path},
			"resource":     map[string]any{"id": entity, "resourceType": "Entity"},
		})
	}

	writeJSON(w, http.StatusOK, bundle(len(resources), resources))
}

func (s *Server) read(w http.ResponseWriter, resourceType, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, resource := range s.resources[resourceType] {
		if resource["id"] == id {
			writeJSON(w, http.StatusOK, withType(resourceType, resource))

			return
		}
	}

	writeJSON(w, http.StatusNotFound, outcome("not-found"))
}

func (s *Server) search(w http.ResponseWriter, resourceType string, query url.Values) {
	s.mu.Lock()
	stored := append([]map[string]any(nil), s.resources[resourceType]...)
	s.mu.Unlock()

	var matching []map[string]any

	for _, resource := range stored {
		if matches(resource, query) {
			matching = append(matching, withType(resourceType, resource))
		}
	}

	page := matching

	if count, err := strconv.Atoi(query.Get("_count")); err == nil && count >= 0 {
		start := 0
		if number, err := strconv.Atoi(query.Get("_page")); err == nil && number > 1 {
			start = (number - 1) * count
		}

		if start > len(page) {
			start = len(page)
		}

		end := min(start+count, len(page))
		page = page[start:end]
	}

	writeJSON(w, http.StatusOK, bundle(len(matching), page))
}

// matches applies every non-underscore parameter as an exact string match.
func matches(resource map[string]any, query url.Values) bool {
	for key, values := range query {
		if strings.HasPrefix(key, "_") {
			continue
		}

		value, ok := resource[key]
		if !ok {
			return false
		}

		if s, ok := value.(string); !ok || s != values[0] {
			return false
		}
	}

	return true
}

func withType(resourceType string, resource map[string]any) map[string]any {
	typed := make(map[string]any, len(resource)+1)
	for key, value := range resource {
		typed[key] = value
	}

	typed["resourceType"] = resourceType

	return typed
}

func bundle(total int, resources []map[string]any) map[string]any {
	entries := make([]any, 0, len(resources))
	for _, resource := range resources {
		entries = append(entries, map[string]any{"resource": resource})
	}

	return map[string]any{
		"resourceType": "Bundle",
		"type":         "searchset",
		"total":        total,
		"entry":        entries,
	}
}

func outcome(code string) map[string]any {
	return map[string]any{
		"resourceType": "OperationOutcome",
		"id":           code,
		"issue":        []any{map[string]any{"severity": "fatal", "code": code}},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
