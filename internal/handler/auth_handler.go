/*
Package handler provides HTTP handler functions for accounts, players, locations,
imagery, and the WebSocket upgrade.

This file covers registration and login. Registration is gated by a Proof-of-Work
challenge; accounts carry client-generated keypair material that the server stores
verbatim and returns at login.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/1o0n1/structure/internal/app/db"
	"github.com/1o0n1/structure/internal/app/store"
	"github.com/1o0n1/structure/internal/pkg/auth/jwt"
	"github.com/1o0n1/structure/internal/pkg/errs"
	"github.com/1o0n1/structure/internal/pkg/logx"
	"github.com/1o0n1/structure/internal/pkg/req"
	"github.com/1o0n1/structure/internal/pkg/resp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// HandlePowChallenge issues a fresh Proof-of-Work nonce for registration.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nonce := deps.PowManager.GenerateNonce()

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      nonce,
			"difficulty": deps.Config.PowDifficulty,
		})
	}
}

type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowVerify validates a solved challenge and issues a short-lived proof token
// the client presents on registration.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PowVerifyInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.PowManager.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			logx.Warn("PoW proof rejected", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"pow_token": token})
	}
}

type RegisterInput struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	PublicKey           string `json:"public_key"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
}

// HandleRegister creates a new account plus its player record at the start location.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.PowManager.CheckProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 8 || len(input.Password) > 72 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.Store.CreateUser(r.Context(), store.CreateUserParams{
			Username:            input.Username,
			Email:               input.Email,
			PasswordHash:        string(hashedPassword),
			PublicKey:           input.PublicKey,
			EncryptedPrivateKey: input.EncryptedPrivateKey,
		})

		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: username or email already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"id":         user.ID,
			"username":   user.Username,
			"role":       user.Role,
			"public_key": user.PublicKey,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a session token together with the
// caller's encrypted private key blob.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Store.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				logx.Error(err, "failed to look up user for login")
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		publicKey := ""
		if user.PublicKey != nil {
			publicKey = *user.PublicKey
		}

		payload := &jwt.Payload{
			Sub:       user.ID.String(),
			Username:  user.Username,
			PublicKey: publicKey,
			Role:      user.Role,
		}

		tokenString, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token on login")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token":                 tokenString,
			"encrypted_private_key": user.EncryptedPrivateKey,
		})
	}
}
