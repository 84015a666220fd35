package client

import (
	"context"
	"errors"
	"strings"

	"github.com/promptpix/apiserver/types"
)

// Backend is the server surface the app depends on.
type Backend interface {
	Register(ctx context.Context, email, password, name string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Generate(ctx context.Context, prompt, model, userEmail string) (GenerateResult, error)
	History(ctx context.Context, userID int) ([]types.PromptView, error)
	Me(ctx context.Context, token string) (types.User, error)
}

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// App ties the guest gate, session marker and API client together into
// the user-facing generation and auth flows.
type App struct {
	api      Backend
	gate     *Gate
	sessions *Sessions
}

func NewApp(api Backend, store StateStore) *App {
	app := &App{
		api:      api,
		gate:     NewGate(store),
		sessions: NewSessions(store),
	}
	// An existing session marker keeps the gate open across restarts.
	if _, ok := app.sessions.Current(); ok {
		app.gate.Unlock()
	}
	return app
}

// Session returns the current session marker, if any.
func (a *App) Session() (Session, bool) {
	return a.sessions.Current()
}

// Gate exposes the guest quota gate.
func (a *App) Gate() *Gate {
	return a.gate
}

// Generate runs one generation. Guests are counted against the quota
// and blocked before any network call once it is exhausted.
func (a *App) Generate(ctx context.Context, prompt, model string) (GenerateResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GenerateResult{}, errors.New("prompt is required")
	}

	session, signedIn := a.sessions.Current()
	if !signedIn && a.gate.Blocked() {
		return GenerateResult{}, ErrGuestLimit
	}

	var userEmail string
	if signedIn {
		userEmail = session.Email
	}

	result, err := a.api.Generate(ctx, prompt, model, userEmail)
	if err != nil {
		return GenerateResult{}, err
	}

	if !signedIn {
		// The image already exists; a failed counter write cannot turn
		// the call into a failure.
		_ = a.gate.Record()
	}
	return result, nil
}

// Authenticate validates the form locally, performs the login or
// registration, persists the session marker, unlocks the gate and
// fetches the user's history.
func (a *App) Authenticate(ctx context.Context, form Form) (AuthResult, []types.PromptView, error) {
	if err := form.Validate(); err != nil {
		return AuthResult{}, nil, err
	}

	var (
		result AuthResult
		err    error
	)
	if form.Mode == ModeRegister {
		result, err = a.api.Register(ctx, strings.TrimSpace(form.Email), form.Password, strings.TrimSpace(form.Name))
	} else {
		result, err = a.api.Login(ctx, strings.TrimSpace(form.Email), form.Password)
	}
	if err != nil {
		return AuthResult{}, nil, err
	}

	if err := a.sessions.Save(Session{
		Email: result.User.Email,
		Name:  result.User.Name,
	}, result.Token); err != nil {
		return AuthResult{}, nil, err
	}
	a.gate.Unlock()

	history, err := a.api.History(ctx, result.User.ID)
	if err != nil {
		// Auth succeeded; a failed history fetch is not fatal.
		return result, nil, nil
	}
	return result, history, nil
}

// History fetches the signed-in user's prompt history.
func (a *App) History(ctx context.Context) ([]types.PromptView, error) {
	token := a.sessions.Token()
	if token == "" {
		return nil, ErrNotSignedIn
	}

	user, err := a.api.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.api.History(ctx, user.ID)
}

// Logout destroys the session marker. The guest counter is untouched,
// so a gated guest stays gated after logging out.
func (a *App) Logout() error {
	return a.sessions.Destroy()
}
