package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the response header carrying the ray id.
const Header = "X-Ray-ID"

// LocalsKey is where the ray id is stored on the request context.
const LocalsKey = "ray_id"

// New returns middleware that tags every request with a ray id. An id sent
// by the client is reused.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
