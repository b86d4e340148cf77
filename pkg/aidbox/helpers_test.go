package aidbox_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
)

type fetchCall struct {
	Path   string
	Params url.Values
}

// fakeSession serves canned payloads by path and records every fetch.
type fakeSession struct {
	mu        sync.Mutex
	calls     []fetchCall
	responses map[string]map[string]any
	errs      map[string]error
	schemas   map[string]aidbox.Schema
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		responses: map[string]map[string]any{},
		errs:      map[string]error{},
		schemas:   map[string]aidbox.Schema{},
	}
}

func (s *fakeSession) Fetch(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, fetchCall{Path: path, Params: params})

	if err, ok := s.errs[path]; ok {
		return nil, err
	}

	response, ok := s.responses[path]
	if !ok {
		return nil, &aidbox.ResponseError{Method: http.MethodGet, Path: "/" + path, StatusCode: http.StatusNotFound}
	}

	return response, nil
}

func (s *fakeSession) Schema(ctx context.Context, resourceType string) (aidbox.Schema, error) {
	schema, ok := s.schemas[resourceType]
	if !ok {
		return aidbox.NewSchema(resourceType), nil
	}

	return schema, nil
}

func (s *fakeSession) Calls() []fetchCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]fetchCall, len(s.calls))
	copy(calls, s.calls)

	return calls
}

func patientSession() *fakeSession {
	session := newFakeSession()
	session.schemas["Patient"] = aidbox.NewSchema("Patient", "name", "birth_date", "general_practitioner")
	session.schemas["Practitioner"] = aidbox.NewSchema("Practitioner", "name")

	return session
}

func bundle(total int, resources ...map[string]any) map[string]any {
	entries := make([]any, 0, len(resources))
	for _, resource := range resources {
		entries = append(entries, map[string]any{"resource": resource})
	}

	return map[string]any{
		"resource_type": "Bundle",
		"total":         total,
		"entry":         entries,
	}
}

type logEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// recordingLogger keeps every log call.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{Level: level, Message: msg, Fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var messages []string

	for _, entry := range l.entries {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}

	return messages
}
