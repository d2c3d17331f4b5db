package middleware

import (
	"strings"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired validates the bearer token and attaches the {id, role}
// identity context consumed downstream.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// AdminRequired ensures the authenticated identity carries the admin role.
func AdminRequired() gin.HandlerFunc {
	return roleRequired(models.UserRoleAdmin)
}

// DealerRequired ensures the authenticated identity carries the dealer
// role; admins pass unconditionally.
func DealerRequired() gin.HandlerFunc {
	return roleRequired(models.UserRoleDealer, models.UserRoleAdmin)
}

func roleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentUserRole(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c)
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user's ID from the request
// context.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}

	id, ok := value.(primitive.ObjectID)
	return id, ok
}

// CurrentUserRole returns the authenticated user's role from the
// request context.
func CurrentUserRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", false
	}

	roleStr, ok := value.(string)
	if !ok {
		return "", false
	}

	role := models.UserRole(roleStr)
	return role, role.Valid()
}
