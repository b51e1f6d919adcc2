package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

const redacted = "[REDACTED]"

// sensitiveKeys fragmentos de nombre de campo cuyo valor nunca se registra.
var sensitiveKeys = []string{"password", "token", "secret", "authorization"}

// AuditLog registra cada petición; 401/403 y fallos en /auth se registran como eventos
// de seguridad con el cuerpo redactado.
func AuditLog(log logger.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// El ErrorHandler todavía no escribió la respuesta.
			status, _, _ = mapError(err)
		}
		meta := map[string]any{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
			"request_id": requestID(c),
		}
		if id := GetIdentity(c); id != nil {
			meta["user_id"] = id.UserID
		}

		switch {
		case status == fiber.StatusUnauthorized || status == fiber.StatusForbidden ||
			(status >= 400 && strings.Contains(c.Path(), "/auth/")):
			meta["body"] = redactBody(c.Body())
			log.Log("warn", "evento de seguridad", meta)
		case status >= 500:
			log.Log("error", "petición fallida", meta)
		default:
			log.Log("info", "petición", meta)
		}
		return err
	}
}

// redactBody devuelve el JSON con los campos sensibles ocultos. Cuerpos no JSON se omiten.
func redactBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "[no-json]"
	}
	return redactValue(v)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if isSensitive(k) {
				t[k] = redacted
				continue
			}
			t[k] = redactValue(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
