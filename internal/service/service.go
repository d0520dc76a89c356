// Package service holds the business rules of healthd, the reference
// collaborator the client talks to.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)     → parses requests, writes {"detail": ...} errors
//	Service (rules)    → checks users exist, decides "No changes made", builds prompts
//	Repository (data)  → reads and writes SQLite
//
// Services never see HTTP types. They return apperror kinds and the handler
// layer turns those into status codes.
//
// DEPENDENCY INJECTION:
// Every service takes repository interfaces, never *sqlite.DB, so the tests
// in this package run against in-memory fakes.
package service

// List limits used when the caller asks for zero or a negative count.
const (
	DefaultDiaryLimit   = 10
	DefaultHistoryLimit = 5
	MaxListLimit        = 100
)

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
