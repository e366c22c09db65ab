package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const sessionKey = "db_session"

// Session gives every request its own GORM session bound to the request
// context. The session is dropped after the handler returns, error or not.
func Session(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := db.Session(&gorm.Session{Context: c.UserContext(), NewDB: true})
		c.Locals(sessionKey, session)

		defer func() {
			c.Locals(sessionKey, nil)
			zerolog.Ctx(c.UserContext()).Debug().Msg("store session released")
		}()

		return c.Next()
	}
}

// DB returns the request's session, nil outside of Session.
func DB(c *fiber.Ctx) *gorm.DB {
	db, _ := c.Locals(sessionKey).(*gorm.DB)
	return db
}
