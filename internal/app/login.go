package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/form"
	"github.com/five82/comanda/internal/session"
)

const maxLoginAttempts = 3

// ErrLoginCancelled is returned when the operator aborts the sign-in prompt.
var ErrLoginCancelled = errors.New("login cancelled")

type authenticator interface {
	Login(ctx context.Context, creds api.LoginRequest) (api.LoginResponse, error)
}

type tokenSaver interface {
	Save(t session.Tokens) error
}

type storedSession interface {
	tokenSaver
	Valid(now time.Time) bool
	Clear() error
}

// ensureSession keeps a valid stored session, or drops it and prompts for a
// new login.
func ensureSession(ctx context.Context, client authenticator, sess storedSession, logger *log.Logger, now time.Time) error {
	if sess.Valid(now) {
		return nil
	}
	if err := sess.Clear(); err != nil {
		return fmt.Errorf("clear expired session: %w", err)
	}
	return login(ctx, client, sess, logger)
}

// login prompts for credentials until the API accepts them and stores the
// returned tokens.
func login(ctx context.Context, client authenticator, sess tokenSaver, logger *log.Logger) error {
	var creds form.Login
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		creds.Password = ""
		if err := loginForm(&creds).RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
				return ErrLoginCancelled
			}
			return fmt.Errorf("login prompt: %w", err)
		}

		err := authenticate(ctx, client, sess, creds, time.Now())
		if err == nil {
			logger.Info("signed in", "email", creds.Email)
			return nil
		}
		logger.Warn("login failed", "email", creds.Email, "attempt", attempt, "err", err)
		fmt.Fprintln(os.Stderr, loginFailureMessage(err))
	}
	return fmt.Errorf("login failed after %d attempts", maxLoginAttempts)
}

func loginForm(creds *form.Login) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&creds.Email).
				Validate(fieldValidator("email", func(v string) form.Login { return form.Login{Email: v, Password: "-"} })),
			huh.NewInput().
				Title("Contraseña").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(fieldValidator("password", func(v string) form.Login { return form.Login{Email: "a@b.co", Password: v} })),
		).Title("comanda").Description("Iniciá sesión para continuar"),
	)
}

// fieldValidator checks a single field through the login form rules.
func fieldValidator(field string, build func(string) form.Login) func(string) error {
	return func(v string) error {
		l := build(v)
		if errs := l.Validate(); errs != nil {
			if msg, ok := errs[field]; ok {
				return errors.New(msg)
			}
		}
		return nil
	}
}

// authenticate validates creds, calls the API and persists the tokens.
func authenticate(ctx context.Context, client authenticator, sess tokenSaver, creds form.Login, now time.Time) error {
	if errs := creds.Validate(); errs != nil {
		return errs
	}
	resp, err := client.Login(ctx, api.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return err
	}
	tokens := session.Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		IDToken:      resp.IDToken,
		Email:        resp.Data.Email,
	}
	if tokens.Email == "" {
		tokens.Email = creds.Email
	}
	if resp.Data.ExpiresIn > 0 {
		tokens.ExpiresAt = now.Add(time.Duration(resp.Data.ExpiresIn) * time.Second)
	}
	if err := sess.Save(tokens); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func loginFailureMessage(err error) string {
	var ferrs form.Errors
	if errors.As(err, &ferrs) {
		return ferrs.Error()
	}
	switch api.KindOf(err) {
	case api.KindUnauthorized, api.KindAPI:
		return "Credenciales inválidas"
	case api.KindTransport, api.KindTimeout:
		return "No se pudo conectar con el servidor"
	default:
		return "Error al iniciar sesión"
	}
}
