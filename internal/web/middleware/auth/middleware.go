// Package auth provides the session authentication middleware.
//
// The middleware validates the session cookie, redirects
// unauthenticated requests to the login page and stores the current
// user in fiber locals for handlers and templates.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/billgix/billgix/internal/web/session"
)

// LoginPath is the path of the login page, kept here to avoid an
// import cycle with the login handler.
const LoginPath = "/login"

// CurrentUserKey is the fiber locals key holding the authenticated user.
const CurrentUserKey = "CurrentUser"

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c *fiber.Ctx) error {
	var (
		isLoginPage   = IsLoginPage(c)
		sessDataValid bool
	)

	originalURL := strings.ToLower(c.OriginalURL())
	if strings.HasPrefix(originalURL, "/static") ||
		strings.HasPrefix(originalURL, "/checkalive") ||
		strings.HasPrefix(originalURL, "/metrics") {
		return c.Next()
	}

	// Allow logout without authentication
	if IsLogoutPage(c) {
		return c.Next()
	}

	// get session cookie
	loginCookie := c.Cookies("session")

	// if no session cookie, redirect to login page
	if loginCookie == "" && !isLoginPage {
		return c.Redirect(LoginPath)
	}

	// check session validity
	sessData := new(session.Data)
	if err := sessData.Read(loginCookie); err != nil {
		if isLoginPage {
			return c.Next()
		}

		return c.Redirect(LoginPath)
	}

	// valid data in session
	if sessData.User.ID > 0 {
		sessDataValid = true

		c.Locals(CurrentUserKey, sessData.User)
	}

	if sessDataValid && isLoginPage {
		return c.Redirect("/dashboard")
	}

	if !sessDataValid && !isLoginPage {
		return c.Redirect(LoginPath)
	}

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.OriginalURL()), LoginPath)
}

// IsLogoutPage checks if the current request is for the logout page.
func IsLogoutPage(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.OriginalURL()), "/logout")
}
