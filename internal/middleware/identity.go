package middleware

import (
	"net/http"

	"rental-service/internal/dto"
	"rental-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// Identity читает X-User-ID / X-User-Role, проставленные внешним шлюзом,
// и кладёт их в контекст запроса. Отсутствие заголовков — не ошибка:
// гостевые запросы (каталог, доступность, создание заказа) разрешены.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := c.GetHeader("X-User-ID"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationError("invalid X-User-ID header", nil))
				return
			}
			ctx = service.WithUserID(ctx, id)
			c.Set(CtxUserID, id)
		}

		if raw := c.GetHeader("X-User-Role"); raw != "" {
			role := service.Role(raw)
			switch role {
			case service.RoleCustomer, service.RoleAdmin:
				ctx = service.WithRole(ctx, role)
				c.Set(CtxUserRole, role)
			default:
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationError("unknown X-User-Role", nil))
				return
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired пускает дальше только запросы с ролью ROLE_ADMIN.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := service.RoleFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing identity headers"))
			return
		}
		if role != service.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("admin role required"))
			return
		}
		c.Next()
	}
}
