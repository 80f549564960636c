package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/NateM03/gym/internal/auth"
	"github.com/NateM03/gym/pkg"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidProfile = errors.New("invalid profile")

type usersRepo interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpsertProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, userID int) (*Profile, error)
}

// statsCreator seeds the gamification state for a fresh user.
type statsCreator interface {
	CreateStats(ctx context.Context, userID int) error
}

type loginService interface {
	Login(ctx context.Context, userID int) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	repo         usersRepo
	statsCreator statsCreator
	authService  loginService
}

func NewHandler(repo usersRepo, statsCreator statsCreator, authService loginService) *Handler {
	return &Handler{
		repo:         repo,
		statsCreator: statsCreator,
		authService:  authService,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.CreateUser(r.Context(), req.Username, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			http.Error(w, "username already taken", http.StatusConflict)
			return
		}
		log.Errorf("register, create user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := handler.statsCreator.CreateStats(r.Context(), user.ID); err != nil {
		log.Errorf("register, create stats for user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := handler.authService.Login(r.Context(), user.ID)
	if err != nil {
		log.Errorf("register, login user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Printf("new user registered: [%s] %d", user.Username, user.ID)

	resp, err := json.Marshal(loginResponse{Token: token, User: *user})
	if err != nil {
		log.Errorf("register, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Errorf("login, get user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := handler.authService.Login(r.Context(), user.ID)
	if err != nil {
		log.Errorf("login user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(loginResponse{Token: token, User: *user})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get("X-GYM-TOKEN"))
	if token == "" {
		http.Error(w, "no token", http.StatusBadRequest)
		return
	}

	if err := handler.authService.Logout(r.Context(), token); err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	profile.UserID = userID

	if err := validateProfile(profile); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.UpsertProfile(r.Context(), profile); err != nil {
		log.Errorf("upsert profile for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "updated")
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	profile, err := handler.repo.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("get profile for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("marshal profile: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func validateProfile(profile Profile) error {
	if profile.Age <= 0 {
		return fmt.Errorf("%w: age is required", ErrInvalidProfile)
	}
	if profile.HeightCm <= 0 {
		return fmt.Errorf("%w: height is required", ErrInvalidProfile)
	}
	if profile.WeightKg <= 0 {
		return fmt.Errorf("%w: weight is required", ErrInvalidProfile)
	}
	if profile.Sex == "" {
		return fmt.Errorf("%w: sex is required", ErrInvalidProfile)
	}
	if profile.DaysPerWeek < 1 || profile.DaysPerWeek > 7 {
		return fmt.Errorf("%w: days per week must be between 1 and 7", ErrInvalidProfile)
	}
	if profile.Goal == "" {
		return fmt.Errorf("%w: goal is required", ErrInvalidProfile)
	}
	if len(profile.Equipment) == 0 {
		return fmt.Errorf("%w: equipment selection is required", ErrInvalidProfile)
	}
	return nil
}
