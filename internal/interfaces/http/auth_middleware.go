package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/locafleet/locafleet-api/internal/application/dto"
	"github.com/locafleet/locafleet-api/pkg/jwt"
)

// LocalCaller chave do identificador do chamador em c.Locals.
const LocalCaller = "caller"

// AuthMiddleware valida o Bearer Token JWT e extrai o chamador para c.Locals.
// Não há RBAC: qualquer token válido pode disparar o gatilho.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "header Authorization obrigatório"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vazio"})
		}
		caller, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido ou expirado"})
		}
		c.Locals(LocalCaller, caller)
		return c.Next()
	}
}

// GetCaller devolve o chamador do contexto (após o middleware de auth).
func GetCaller(c *fiber.Ctx) string {
	v := c.Locals(LocalCaller)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
