package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/response"
)

// Self grants access when the :id path parameter is the caller's own student profile.
const Self = "SELF"

// ContextStudentKey stores the student profile resolved for a SELF match.
const ContextStudentKey = "currentStudent"

// StudentResolver maps an account to the student profile linked to it.
type StudentResolver interface {
	ResolveByUser(ctx context.Context, userID string) (*models.Student, error)
}

// RBAC enforces role-based access control for routes. SELF entries need a resolver
// and are ignored by this variant.
func RBAC(allowed ...string) gin.HandlerFunc {
	return authorize(nil, allowed)
}

// RBACWithSelf behaves like RBAC and additionally lets students reach their own :id.
func RBACWithSelf(resolver StudentResolver, allowed ...string) gin.HandlerFunc {
	return authorize(resolver, allowed)
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

func authorize(resolver StudentResolver, allowed []string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == Self {
			allowSelf = resolver != nil
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf && claims.Role == models.RoleStudent {
			if targetID := c.Param("id"); targetID != "" {
				student, err := resolver.ResolveByUser(c.Request.Context(), claims.UserID)
				switch {
				case err == nil && student.ID == targetID:
					c.Set(ContextStudentKey, student)
					c.Next()
					return
				case err != nil && !errors.Is(err, appErrors.ErrNotFound):
					response.Error(c, err)
					c.Abort()
					return
				}
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
