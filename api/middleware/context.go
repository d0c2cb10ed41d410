package middleware

import "context"

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxStoreID  contextKey = "store_id"
	ctxBranchID contextKey = "branch_id"
	ctxAccessID contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

func StoreIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxStoreID)
}

func BranchIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxBranchID)
}

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxAccessID)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithStoreID injects the store identifier into the context for downstream handlers.
func WithStoreID(ctx context.Context, storeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, storeID)
}

// WithBranchID injects the active branch identifier into the context.
func WithBranchID(ctx context.Context, branchID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBranchID, branchID)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
