// Package aidbox defines the types used to read resources from an Aidbox
// server: the Client and Session interfaces, Resource, Reference, SearchSet,
// Query and the per-session SchemaCache.
//
// A SearchSet is a lazy description of a search. Chain methods (Search,
// Where, Limit, Page, Sort) return a new SearchSet and never touch the
// network; the terminal methods (Get, All, First, Count, Iter) do.
//
//	patients := client.Resources("Patient").
//	  Search(map[string]any{"name": "Jane"}).
//	  Limit(5).
//	  Sort("-birth_date", "name")
//
//	all, err := patients.All(ctx)
//	if err != nil { ... }
//
//	for patient, err := range patients.Iter(ctx) {
//	  if err != nil { ... }
//	  name, _ := patient.Get("name")
//	  fmt.Println(name)
//	}
//
// Field names are snake_case on the Go side. Resource fields are checked
// against the attribute schema of their type, fetched once per session:
//
//	patient, err := client.Resource(ctx, "Patient", map[string]any{"name": "Jane"})
//	err = patient.Set("nickname", "J") // *UnknownFieldError unless the schema has it
//
// # Errors
//
// Server failures come back as *ResponseError. Use IsNotFound and
// IsAuthorization (or errors.Is with ErrNotFound / ErrAuthorization) to tell
// them apart. Schema violations are *UnknownFieldError and match ErrUnknownField.
//
// Client construction lives in the aidboxclient package.
package aidbox
