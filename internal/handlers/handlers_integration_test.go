package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"annadaan/internal/handlers"
	"annadaan/internal/middleware"
	"annadaan/internal/models"
	"annadaan/internal/repositories"
	"annadaan/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// envelope mirrors the uniform response body for decoding in tests.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
}

// setupApp builds the full Fiber app over a fresh in-memory SQLite database.
// Each call gets its own database so tests do not leak state into each other.
func setupApp() (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Donation{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	donationRepo := repositories.NewGORMDonationRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret, 15*time.Minute, 7*24*time.Hour)
	donationService := services.NewDonationService(donationRepo, userRepo, nil) // nil publisher: no broker in tests

	authHandler := handlers.NewAuthHandler(authService)
	donationHandler := handlers.NewDonationHandler(donationService)

	app := fiber.New()

	soft := middleware.AuthOptional(authService)
	required := middleware.AuthRequired(authService)

	authHandler.RegisterRoutes(app)
	donationHandler.RegisterRoutes(app, soft, required)

	// One admin account, the way the boot-time seed creates it
	admin := &models.User{
		Fullname: "Administrator",
		Email:    "admin@example.com",
		Phone:    "9000000000",
		Password: "adminpass",
		Role:     models.RoleAdmin,
	}
	if err := authService.RegisterUser(admin); err != nil {
		return nil, nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	var env envelope
	err = json.NewDecoder(resp.Body).Decode(&env)
	assert.NoError(t, err)
	resp.Body.Close()

	return resp, env
}

// login returns the access token for existing credentials.
func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	resp, env := doJSON(t, app, http.MethodPost, "/user/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

// registerDonor registers a donor account and returns its access token.
func registerDonor(t *testing.T, app *fiber.App, email, phone string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/user/register", "", map[string]string{
		"fullname": "Test Donor",
		"email":    email,
		"phone":    phone,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	return login(t, app, email, "password123")
}

func TestRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	assert.NoError(t, err)

	body := map[string]string{
		"fullname": "Test User",
		"email":    "test@example.com",
		"phone":    "9876543210",
		"password": "password123",
	}

	resp, env := doJSON(t, app, http.MethodPost, "/user/register", "", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	var created models.User
	assert.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.RoleDonor, created.Role)
	assert.Empty(t, created.Password, "digest must never be serialized")

	// Same email again conflicts
	resp, env = doJSON(t, app, http.MethodPost, "/user/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	// Same phone with a fresh email conflicts too
	body["email"] = "other@example.com"
	resp, _ = doJSON(t, app, http.MethodPost, "/user/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login succeeds and the token resolves back to the user
	token := login(t, app, "test@example.com", "password123")
	user, err := authService.CurrentUser(token)
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	// Wrong password is 401, unknown email is 404
	resp, _ = doJSON(t, app, http.MethodPost, "/user/login", "", map[string]string{
		"email": "test@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/user/login", "", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	resp, env := doJSON(t, app, http.MethodPost, "/user/register", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "Full name is required")
	assert.Contains(t, env.Message, "Email is required")
	assert.Contains(t, env.Message, "Phone number is required")
	assert.Contains(t, env.Message, "Password is required")

	// Ten characters is not enough on its own: signs and decimal points are
	// not digits
	resp, env = doJSON(t, app, http.MethodPost, "/user/register", "", map[string]string{
		"fullname": "Test User",
		"email":    "test@example.com",
		"phone":    "-123456789",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "Phone number must be exactly 10 digits")
}

func TestLogoutClearsCookies(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user/logout", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared []string
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			cleared = append(cleared, c.Name)
		}
	}
	assert.Contains(t, cleared, "accessToken")
	assert.Contains(t, cleared, "refreshToken")
	resp.Body.Close()
}

func TestAnonymousDonationLifecycle(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Anonymous submit: 201, pending, no owner, any supplied status ignored
	resp, env := doJSON(t, app, http.MethodPost, "/donate/donate", "", map[string]string{
		"fullname":     "A",
		"email":        "a@b.com",
		"phone":        "9876543210",
		"foodType":     "veg",
		"fullAddress":  "X",
		"foodQuantity": "5",
		"status":       "completed",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	var donation models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &donation))
	assert.Equal(t, models.StatusPending, donation.Status)
	assert.Nil(t, donation.UserID)
	assert.Nil(t, donation.User)

	adminToken := login(t, app, "admin@example.com", "adminpass")

	// Admin accepts the donation
	resp, env = doJSON(t, app, http.MethodPatch, "/donate/status", adminToken, map[string]string{
		"donationId": donation.ID,
		"status":     "accepted",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.StatusAccepted, updated.Status)

	// A non-admin donor cannot touch it; the record stays accepted
	donorToken := registerDonor(t, app, "donor@example.com", "9111111111")
	resp, _ = doJSON(t, app, http.MethodPatch, "/donate/status", donorToken, map[string]string{
		"donationId": donation.ID,
		"status":     "cancelled",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodGet, "/donate/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
	assert.Equal(t, models.StatusAccepted, all[0].Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	adminToken := login(t, app, "admin@example.com", "adminpass")

	// Status outside the enum
	resp, _ := doJSON(t, app, http.MethodPatch, "/donate/status", adminToken, map[string]string{
		"donationId": uuid.New().String(),
		"status":     "shipped",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown donation
	resp, _ = doJSON(t, app, http.MethodPatch, "/donate/status", adminToken, map[string]string{
		"donationId": uuid.New().String(),
		"status":     "accepted",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No credential at all
	resp, _ = doJSON(t, app, http.MethodPatch, "/donate/status", "", map[string]string{
		"donationId": uuid.New().String(),
		"status":     "accepted",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitValidationAggregates(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	resp, env := doJSON(t, app, http.MethodPost, "/donate/donate", "", map[string]string{
		"phone":        "123",
		"foodQuantity": "0",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Phone number must be exactly 10 digits")
	assert.Contains(t, env.Message, "Email is required")
	assert.Contains(t, env.Message, "Full name is required")
	assert.Contains(t, env.Message, "Food quantity must be a positive integer")
}

func TestListOwn(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Unauthenticated: empty list, not an error
	resp, env := doJSON(t, app, http.MethodGet, "/donate/user", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var donations []models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &donations))
	assert.Empty(t, donations)

	// An authenticated donor owns what they submit, even with a foreign
	// donatedBy in the body
	donorToken := registerDonor(t, app, "donor@example.com", "9111111111")
	resp, _ = doJSON(t, app, http.MethodPost, "/donate/donate", donorToken, map[string]string{
		"fullname":     "Test Donor",
		"email":        "donor@example.com",
		"phone":        "9111111111",
		"foodType":     "both",
		"fullAddress":  "12 Main Street",
		"foodQuantity": "3",
		"donatedBy":    uuid.New().String(),
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodGet, "/donate/user", donorToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.Unmarshal(env.Data, &donations))
	assert.Len(t, donations, 1)
	assert.Equal(t, "both", donations[0].FoodType)

	// An admin listing everything sees the donor projection resolved
	adminToken := login(t, app, "admin@example.com", "adminpass")
	resp, env = doJSON(t, app, http.MethodGet, "/donate/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
	assert.NotNil(t, all[0].User)
	assert.Equal(t, "donor@example.com", all[0].User.Email)
}

func TestListAllOrderingAndAccess(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	submit := func(name string) {
		resp, _ := doJSON(t, app, http.MethodPost, "/donate/foodDonate", "", map[string]string{
			"fullname":     name,
			"email":        "a@b.com",
			"phone":        "9876543210",
			"foodType":     "non-veg",
			"fullAddress":  "X",
			"foodQuantity": "1",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		time.Sleep(5 * time.Millisecond) // keep DonatedAt strictly increasing
	}
	submit("first")
	submit("second")
	submit("third")

	// Donors are forbidden, with or without a token resolving
	donorToken := registerDonor(t, app, "donor@example.com", "9111111111")
	resp, _ := doJSON(t, app, http.MethodGet, "/donate/all", donorToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/donate/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Admins see newest first
	adminToken := login(t, app, "admin@example.com", "adminpass")
	resp, env := doJSON(t, app, http.MethodGet, "/donate/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var all []models.Donation
	assert.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Fullname)
	assert.Equal(t, "second", all[1].Fullname)
	assert.Equal(t, "first", all[2].Fullname)
}

func TestInvalidTokenRejectedOnSoftRoutes(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// A present-but-garbage token is rejected even where auth is optional
	resp, _ := doJSON(t, app, http.MethodGet, "/donate/user", "garbage.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
