package services

import (
	"fmt"
	"log"
	"time"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"
	"annadaan/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration // Duration for which the access token is valid
	refreshTTL time.Duration // Duration for which the refresh token is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the lifetime of issued access tokens.
func (s *AuthService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the lifetime of issued refresh tokens.
func (s *AuthService) RefreshTTL() time.Duration { return s.refreshTTL }

// RegisterUser registers a new user, hashes their password, and saves them to
// the database. Email is checked before phone; both must be unique.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return apperrors.New(apperrors.Conflict, fmt.Sprintf("email '%s' already registered", user.Email))
	}
	if existingUser, err := s.userRepo.GetByPhone(user.Phone); err == nil && existingUser != nil {
		return apperrors.New(apperrors.Conflict, fmt.Sprintf("phone '%s' already registered", user.Phone))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if user.Role == "" {
		user.Role = models.RoleDonor
	}

	if err := s.userRepo.Create(user); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to register user", err)
	}
	return nil
}

// LoginUser authenticates a user and returns the user together with an
// access token and a refresh token, both bound to the user's ID.
func (s *AuthService) LoginUser(email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.NotFound {
			return nil, "", "", apperrors.New(apperrors.NotFound, "user not found")
		}
		return nil, "", "", apperrors.Wrap(apperrors.Internal, "failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", apperrors.New(apperrors.Unauthorized, "invalid credentials")
	}

	accessToken, err := s.generateToken(user.ID, "access", s.accessTTL)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := s.generateToken(user.ID, "refresh", s.refreshTTL)
	if err != nil {
		return nil, "", "", err
	}

	// Never hand the digest back to callers.
	user.Password = ""
	return user, accessToken, refreshToken, nil
}

// generateToken signs an HS256 token carrying the user ID and an expiry.
func (s *AuthService) generateToken(userID, tokenType string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "failed to generate token", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid. Expiry is distinguished from other failures for client diagnostics.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.Wrap(apperrors.Unauthorized, "token has expired", err)
		}
		return nil, apperrors.Wrap(apperrors.Unauthorized, "invalid token", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.New(apperrors.Unauthorized, "invalid token")
}

// CurrentUser resolves a token to a live user row. The lookup performs no
// mutation; a token whose subject no longer resolves is rejected.
func (s *AuthService) CurrentUser(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, apperrors.New(apperrors.Unauthorized, "invalid token")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.NotFound {
			return nil, apperrors.New(apperrors.Unauthorized, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to resolve user", err)
	}
	return user, nil
}
