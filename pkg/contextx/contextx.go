// Package contextx 提供跨层传递的类型化 context 值：事务句柄、请求 ID、已解析的用户身份。
// 身份解析（OAuth/会话）由上游网关完成，这里只承载结果。
package contextx

import "context"

type txKey struct{}

type userIDKey struct{}

type requestIDKey struct{}

// WithTx 将事务句柄放入 context，供仓储层在同一事务内执行
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Tx 取出事务句柄，不存在时返回 nil
func Tx(ctx context.Context) any {
	return ctx.Value(txKey{})
}

// WithUserID 将已认证的用户 ID 放入 context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID 取出已认证的用户 ID，未认证时返回空串
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// WithRequestID 将请求 ID 放入 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID 取出请求 ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
