// Package appcontext carries per-request identity values through context
package appcontext

import "context"

type contextKey string

var (
	requestIDKey = contextKey("X-Request-Id")
	tenantIDKey  = contextKey("X-Tenant-Id")
	userIDKey    = contextKey("X-User-Id")
	methodKey    = contextKey("X-Method")
	routeKey     = contextKey("X-Route")
	remoteIPKey  = contextKey("X-Remote-Ip")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

func GetTenantID(ctx context.Context) string {
	return stringValue(ctx, tenantIDKey)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey, method)
}

func GetMethod(ctx context.Context) string {
	return stringValue(ctx, methodKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	return stringValue(ctx, routeKey)
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, remoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	return stringValue(ctx, remoteIPKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	value, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return value
}
