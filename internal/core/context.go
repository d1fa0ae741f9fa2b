package core

import "context"

type contextKey string

const (
	ctxKeyImportID contextKey = "import_id"
	ctxKeySource   contextKey = "source"
)

// ContextWithImportID tags ctx with the id of the import being processed.
func ContextWithImportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyImportID, id)
}

// ContextWithSource records which front end started the operation ("web", "cli").
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// GetImportIDFromContext extracts the import id from context.
func GetImportIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyImportID).(string); ok {
		return v
	}
	return ""
}

// GetSourceFromContext extracts the operation source from context.
func GetSourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}
