package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
	"buspass/internal/repositories"
	"buspass/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	Users     repositories.UserRepository
	Secret    []byte
	RequestID string
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login checks the password and returns a signed token carrying user_id and role.
func (s AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	invalid := domain.UnauthorizedError{Msg: "Invalid email or password"}
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, invalid
		}
		return "", models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, invalid
	}
	token, err := IssueToken(s.Secret, u.ID, u.Role, time.Now())
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	logger.Event(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return token, u, nil
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !utils.IsDigits(phone, 10) {
		return models.User{}, domain.ValidationError{Field: "phone", Msg: "Phone number must be 10 digits"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	u := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         "user",
	}
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	logger.Event(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", id))
	return u, nil
}

func IssueToken(secret []byte, userID int64, role string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken validates an HS256 token and extracts the caller.
func ParseToken(secret []byte, raw string) (domain.RequestContext, error) {
	invalid := domain.UnauthorizedError{Msg: "Invalid or expired token"}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.RequestContext{}, invalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.RequestContext{}, invalid
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return domain.RequestContext{}, invalid
	}
	role, _ := claims["role"].(string)
	return domain.RequestContext{UserID: int64(id), Role: role}, nil
}
