package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

const callbackPage = "<html><body>You can now close this window!</body></html>"

// codeExchanger is the slice of OAuthExchanger the login flow needs.
type codeExchanger interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (domain.Credential, error)
}

// InteractiveLogin runs the authorization-code flow: it starts a local
// callback listener, sends the user's browser to the authorization page and
// suspends until the listener delivers the one-time code. The code arrives
// exactly once; the flow fails if the timeout elapses first.
type InteractiveLogin struct {
	exchanger   codeExchanger
	listenAddr  string
	callbackURL string
	timeout     time.Duration
	openBrowser func(url string) error
}

type InteractiveLoginConfig struct {
	ListenAddr  string
	CallbackURL string

	// Timeout bounds the wait for the user to complete the login. Zero means
	// wait until the context is done.
	Timeout time.Duration

	// OpenBrowser overrides how the authorization URL is opened. Defaults to
	// the platform launcher.
	OpenBrowser func(url string) error
}

func NewInteractiveLogin(exchanger codeExchanger, cfg InteractiveLoginConfig) *InteractiveLogin {
	openBrowser := cfg.OpenBrowser
	if openBrowser == nil {
		openBrowser = launchBrowser
	}

	return &InteractiveLogin{
		exchanger:   exchanger,
		listenAddr:  cfg.ListenAddr,
		callbackURL: cfg.CallbackURL,
		timeout:     cfg.Timeout,
		openBrowser: openBrowser,
	}
}

type callbackResult struct {
	code  string
	state string
}

// Authorize blocks until the external listener delivers an authorization
// code, then exchanges it for a user credential.
func (l *InteractiveLogin) Authorize(ctx context.Context) (domain.Credential, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, callbackPage)

		select {
		case results <- callbackResult{code: r.URL.Query().Get("code"), state: r.URL.Query().Get("state")}:
		default:
			// a second callback hit; the first one wins
		}
	})

	listener, err := net.Listen("tcp", l.listenAddr)
	if err != nil {
		return domain.Credential{}, &domain.AuthError{Op: "start callback listener", Err: err}
	}

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Callback listener failed")
		}
	}()
	defer server.Close()

	authURL := l.exchanger.AuthCodeURL(state)
	log.Info().Str("url", authURL).Msg("Opening browser for interactive login")

	if err := l.openBrowser(authURL); err != nil {
		return domain.Credential{}, &domain.AuthError{Op: "open browser", Err: err}
	}

	select {
	case <-ctx.Done():
		return domain.Credential{}, &domain.AuthError{Op: "interactive login", Err: ctx.Err()}
	case result := <-results:
		if result.state != state {
			return domain.Credential{}, &domain.AuthError{Op: "interactive login", Err: errors.New("state mismatch on callback")}
		}
		if result.code == "" {
			return domain.Credential{}, &domain.AuthError{Op: "interactive login", Err: errors.New("no authorization code delivered")}
		}
		return l.exchanger.ExchangeCode(ctx, result.code)
	}
}

func launchBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
