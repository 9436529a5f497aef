package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"nexusbet/helpers"
	"nexusbet/models"
	"nexusbet/store"
)

const sessionTTL = 30 * 24 * time.Hour

type Controller struct {
	db       *gorm.DB
	accounts *store.AccountStore
}

func New(db *gorm.DB, accounts *store.AccountStore) *Controller {
	return &Controller{db: db, accounts: accounts}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (ctl *Controller) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || len(req.Password) < 6 {
		return helpers.JSONError(c, "USERNAME_AND_PASSWORD_REQUIRED")
	}

	user, err := ctl.accounts.Create(req.Username, hashPassword(req.Password), req.Email)
	if err != nil {
		if err == store.ErrDuplicateIdentity {
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "USER_ALREADY_EXISTS")
		}
		return helpers.JSONError(c, "FAILED_TO_REGISTER_USER")
	}

	session, err := ctl.newSession(user)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_CREATE_SESSION")
	}

	return helpers.JSONCreated(c, "User registered successfully", fiber.Map{
		"token": session.SID,
		"user":  helpers.Profile(user),
	})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	user, err := ctl.accounts.Get(strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS")
	}
	if user.PasswordHash != hashPassword(req.Password) {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS")
	}
	if user.IsBanned {
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "ACCOUNT_SUSPENDED")
	}

	session, err := ctl.newSession(user)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_CREATE_SESSION")
	}

	return helpers.JSONSuccess(c, "Login successful", fiber.Map{
		"token": session.SID,
		"user":  helpers.Profile(user),
	})
}

func (ctl *Controller) Logout(c *fiber.Ctx) error {
	token := c.Get("X-Session-Token")
	if token != "" {
		ctl.db.Where("sid = ?", token).Delete(&models.Session{})
	}
	return helpers.JSONSuccess(c, "Logged out", nil)
}

func (ctl *Controller) newSession(user *models.User) (*models.Session, error) {
	session := models.Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := ctl.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
