package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/dto"
)

// Context keys for request-scoped values
const (
	RequestIDKey      = "request_id"
	ActorKey          = "actor"
	IdempotencyKeyKey = "idempotency_key"
)

// Identity headers. The upstream API gateway authenticates the caller and
// forwards their identity in these headers; this service trusts them.
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderTenantID       = "X-Tenant-ID"
	HeaderUserID         = "X-User-ID"
	HeaderUserName       = "X-User-Name"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// RequestID assigns each request an ID, honoring one supplied by the caller
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// ActorContext resolves the acting user from the identity headers and
// rejects requests without a valid tenant and user
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.GetHeader(HeaderTenantID))
		if err != nil || tenantID == uuid.Nil {
			abortUnauthorized(c, "A valid X-Tenant-ID header is required")
			return
		}
		userID, err := uuid.Parse(c.GetHeader(HeaderUserID))
		if err != nil || userID == uuid.Nil {
			abortUnauthorized(c, "A valid X-User-ID header is required")
			return
		}

		actor := shared.Actor{
			TenantID:    tenantID,
			UserID:      userID,
			DisplayName: c.GetHeader(HeaderUserName),
			IP:          c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
		}
		c.Set(ActorKey, actor)

		if key := c.GetHeader(HeaderIdempotencyKey); key != "" {
			c.Set(IdempotencyKeyKey, key)
		}
		c.Next()
	}
}

// GetActor retrieves the resolved actor from the gin context
func GetActor(c *gin.Context) (shared.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(shared.Actor); ok {
			return actor, true
		}
	}
	return shared.Actor{}, false
}

// GetIdempotencyKey retrieves the idempotency key header value, if any
func GetIdempotencyKey(c *gin.Context) string {
	return c.GetString(IdempotencyKeyKey)
}

// GetRequestID retrieves the request ID from the gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse("UNAUTHORIZED", message, GetRequestID(c)))
}
