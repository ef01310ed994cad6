package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/pkg/jwt"
)

// Locals keys para la identidad de la sesión de caja en Fiber.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalBranchID = "branch_id"
	LocalRole     = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad (usuario,
// tenant, sucursal, rol) en c.Locals. Los tokens los emite el servicio
// central; el nodo solo comparte el secreto de firma, así que las sesiones
// ya emitidas siguen sirviendo sin conexión.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if claims.TenantID == "" || claims.BranchID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token sin tenant o sucursal"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalTenantID, claims.TenantID)
		c.Locals(LocalBranchID, claims.BranchID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe usarse DESPUÉS de
// AuthMiddleware (lee el rol de c.Locals).
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "token sin rol"})
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso a esta operación"})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetTenantID devuelve el TenantID del contexto.
func GetTenantID(c *fiber.Ctx) string {
	return localString(c, LocalTenantID)
}

// GetBranchID devuelve el BranchID del contexto.
func GetBranchID(c *fiber.Ctx) string {
	return localString(c, LocalBranchID)
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
