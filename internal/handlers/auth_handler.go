package handlers

import (
	"log"
	"strings"
	"time"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"
	"annadaan/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/logout", h.HandleLogout)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Fullname string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=10,number"`
	Password string `json:"password" validate:"required,min=6"`
}

// registerViolation maps a failed registration field rule to its message.
// Only the password is specific to registration; the rest share the
// donation-form wording.
func registerViolation(fe validator.FieldError) string {
	if fe.Field() == "Password" {
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return "Password must be at least 6 characters"
	}
	return services.ViolationMessage(fe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "invalid request body"))
	}

	if err := h.validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var messages []string
			for _, fe := range validationErrors {
				messages = append(messages, registerViolation(fe))
			}
			return Fail(c, apperrors.New(apperrors.InvalidArgument, strings.Join(messages, ", ")))
		}
		return Fail(c, err)
	}

	user := &models.User{
		Fullname: req.Fullname,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}

	if err := h.authService.RegisterUser(user); err != nil {
		log.Printf("Error registering user: %v", err)
		return Fail(c, err)
	}

	// For security, do not return the password hash
	user.Password = ""
	return Respond(c, fiber.StatusCreated, "User created successfully", user)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user, issues the access and refresh tokens,
// and mirrors them into HTTP-only cookies for browser clients.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "invalid request body"))
	}

	if err := h.validate.Struct(req); err != nil {
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "email and password are required"))
	}

	user, accessToken, refreshToken, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return Fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Expires:  time.Now().Add(h.authService.AccessTTL()),
		HTTPOnly: true,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Expires:  time.Now().Add(h.authService.RefreshTTL()),
		HTTPOnly: true,
	})

	return Respond(c, fiber.StatusOK, "User logged in successfully", fiber.Map{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// HandleLogout clears the session cookies. Tokens themselves are stateless
// and simply expire on their own schedule.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "accessToken", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refreshToken", Value: "", Expires: expired, HTTPOnly: true})

	return Respond(c, fiber.StatusOK, "User logged out successfully", nil)
}
