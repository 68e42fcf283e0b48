package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsonblog/backend/internal/auth"
	"github.com/jsonblog/backend/internal/middleware"
	"github.com/jsonblog/backend/internal/models"
	"github.com/jsonblog/backend/internal/services"
)

type UserHandler struct {
	users           UserStore
	cipher          *auth.Cipher
	jwtSecret       string
	cookieTTL       time.Duration
	defaultPassword string
	temporaryTTL    time.Duration
	bcryptCost      int
}

func NewUserHandler(users UserStore, cipher *auth.Cipher, jwtSecret string, cookieTTL time.Duration, defaultPassword string, temporaryTTL time.Duration, bcryptCost int) *UserHandler {
	return &UserHandler{
		users:           users,
		cipher:          cipher,
		jwtSecret:       jwtSecret,
		cookieTTL:       cookieTTL,
		defaultPassword: defaultPassword,
		temporaryTTL:    temporaryTTL,
		bcryptCost:      bcryptCost,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
}

// Register creates a self-service account. The chosen username and picture
// go into the pending overlay; the stored base identity is a generated
// placeholder until an admin approves the edit.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	username := h.cipher.Decrypt(req.Username)
	password := h.cipher.Decrypt(req.Password)

	if reason := models.CheckUsername(username, false); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}
	if reason := models.CheckPassword(password); reason != "" {
		sendWarning(w, reason, models.WarnPassword)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if _, err := h.users.FindByName(ctx, username); err == nil {
		sendWarning(w, "user already exists", models.WarnGeneral)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		log.Printf("[user] register lookup failed err=%v", err)
		sendError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		sendError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	id, err := h.users.Create(ctx, &models.User{
		Username: fmt.Sprintf("user-%s", uuid.New()),
		Password: string(hash),
		Role:     models.RoleContributor,
		Status:   models.StatusPending,
		Pending:  &models.PendingProfile{Username: username, Picture: req.Picture},
	})
	if err != nil {
		log.Printf("[user] register insert failed err=%v", err)
		sendError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	if err := h.setSessionCookie(w, id); err != nil {
		sendError(w, "registration failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"id": id})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login resolves the account by base or pending username, checks the
// password and mints the session cookie. The lazy role expiry runs here as
// well because login bypasses the authenticator.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	password := h.cipher.Decrypt(req.Password)

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	user, err := h.users.FindByName(ctx, req.Username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "login failed, user does not exist", models.WarnGeneral)
			return
		}
		log.Printf("[user] login lookup failed err=%v", err)
		sendError(w, "login failed", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		sendWarning(w, "login failed, wrong password", models.WarnPassword)
		return
	}

	now := time.Now()
	if user.ApplyRoleExpiry(now) {
		if err := h.users.UpdateRole(ctx, user.ID, user.Role); err != nil {
			log.Printf("[user] role downgrade persist failed user=%s err=%v", user.ID, err)
		}
	}

	if err := h.setSessionCookie(w, user.ID); err != nil {
		sendError(w, "login failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, user.ProfileView(now))
}

// Logout clears the session cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	sendSuccess(w, nil)
}

// My returns the caller's own profile with any pending edit merged in.
func (h *UserHandler) My(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	user, err := h.users.FindByID(ctx, p.ID)
	if err != nil {
		sendWarning(w, "user not found", models.WarnGeneral)
		return
	}
	sendSuccess(w, user.ProfileView(time.Now()))
}

type updateProfileRequest struct {
	Username  string `json:"username"`
	Picture   string `json:"picture"`
	Biography string `json:"biography"`
}

// UpdateMy submits a profile edit as a pending overlay. An edit is allowed
// only once per cooldown window; the base fields stay publicly visible
// until an admin approves the overlay.
func (h *UserHandler) UpdateMy(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	user, err := h.users.FindByID(ctx, p.ID)
	if err != nil {
		sendWarning(w, "user not found", models.WarnGeneral)
		return
	}

	now := time.Now()
	if !user.CanModify(now) {
		sendWarning(w, "profile may only be updated once every 3 days", models.WarnGeneral)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	if reason := models.CheckUsername(req.Username, false); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	pendingUsername := ""
	if user.Pending != nil {
		pendingUsername = user.Pending.Username
	}
	if req.Username != user.Username && req.Username != pendingUsername {
		if _, err := h.users.FindByName(ctx, req.Username); err == nil {
			sendWarning(w, "user already exists", models.WarnGeneral)
			return
		} else if !errors.Is(err, services.ErrNotFound) {
			sendError(w, "profile update failed", http.StatusInternalServerError)
			return
		}
	}

	// Nothing changed and nothing pending: succeed without burning the
	// cooldown window.
	if req.Username == user.Username && req.Picture == user.Picture &&
		req.Biography == user.Biography && user.Pending == nil {
		sendSuccess(w, nil)
		return
	}

	err = h.users.AttachPendingProfile(ctx, user.ID, &models.PendingProfile{
		Username:  req.Username,
		Picture:   req.Picture,
		Biography: req.Biography,
	}, now)
	if err != nil {
		log.Printf("[user] overlay attach failed user=%s err=%v", user.ID, err)
		sendError(w, "profile update failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

// UpdatePassword replaces the caller's own password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	password := h.cipher.Decrypt(req.Password)
	if reason := models.CheckPassword(password); reason != "" {
		sendWarning(w, reason, models.WarnPassword)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		sendError(w, "password update failed", http.StatusInternalServerError)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.users.UpdatePassword(ctx, p.ID, string(hash)); err != nil {
		sendError(w, "password update failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

type createUserRequest struct {
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	Biography  string      `json:"biography"`
	Expiration *time.Time  `json:"expiration,omitempty"`
}

// Create provisions an account with a chosen role (admin only). The account
// gets the shared default password; temporary-trusted accounts expire after
// the configured window unless an explicit expiration is given.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.IsAdmin {
		sendForbidden(w)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	if reason := models.CheckUsername(req.Username, true); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}
	if !req.Role.Valid() {
		sendWarning(w, "unknown role", models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if _, err := h.users.FindByName(ctx, req.Username); err == nil {
		sendWarning(w, "user already exists", models.WarnGeneral)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		sendError(w, "user creation failed", http.StatusInternalServerError)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(h.defaultPassword), h.bcryptCost)
	if err != nil {
		sendError(w, "user creation failed", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Username:  req.Username,
		Password:  string(hash),
		Biography: req.Biography,
		Role:      req.Role,
		Status:    models.InitialStatus(p),
	}
	if req.Role == models.RoleTemporaryTrusted {
		if req.Expiration != nil {
			user.Expiration = *req.Expiration
		} else {
			user.Expiration = time.Now().Add(h.temporaryTTL)
		}
	}

	id, err := h.users.Create(ctx, user)
	if err != nil {
		log.Printf("[user] create insert failed err=%v", err)
		sendError(w, "user creation failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"id": id})
}

type reviewProfileRequest struct {
	ID      string `json:"id"`
	Approve bool   `json:"approve"`
}

// Review resolves a pending profile edit (admin only): approve merges the
// overlay into the base fields, reject discards it. This is the only way an
// overlay is ever cleared.
func (h *UserHandler) Review(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.IsAdmin {
		sendForbidden(w)
		return
	}

	var req reviewProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	var err error
	if req.Approve {
		err = h.users.ApprovePendingProfile(ctx, req.ID)
	} else {
		err = h.users.RejectPendingProfile(ctx, req.ID)
	}
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "user not found", models.WarnGeneral)
			return
		}
		sendError(w, "profile review failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, userID string) error {
	token, err := auth.SignToken(h.jwtSecret, userID, h.cookieTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL / time.Second),
		HttpOnly: true,
	})
	return nil
}
