package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline/plotline/internal/domain"
)

type fakeCodeExchanger struct {
	exchangedCode string
	err           error
}

func (f *fakeCodeExchanger) AuthCodeURL(state string) string {
	return "https://identity.example/authorize?response_type=code&state=" + url.QueryEscape(state)
}

func (f *fakeCodeExchanger) ExchangeCode(ctx context.Context, code string) (domain.Credential, error) {
	f.exchangedCode = code
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	return domain.Credential{AccessToken: "user-token", RefreshToken: "rt"}, nil
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestInteractiveLoginDeliversCodeOnce(t *testing.T) {
	addr := freeAddr(t)
	exchanger := &fakeCodeExchanger{}

	// the "browser" hits the local callback with the code, like the remote
	// identity service would after the user grants access
	openBrowser := func(authURL string) error {
		parsed, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		state := parsed.Query().Get("state")

		go func() {
			callback := fmt.Sprintf("http://%s/oauth?code=one-time-code&state=%s", addr, url.QueryEscape(state))
			for i := 0; i < 50; i++ {
				resp, err := http.Get(callback)
				if err == nil {
					resp.Body.Close()
					return
				}
				time.Sleep(10 * time.Millisecond)
			}
		}()
		return nil
	}

	login := NewInteractiveLogin(exchanger, InteractiveLoginConfig{
		ListenAddr:  addr,
		Timeout:     5 * time.Second,
		OpenBrowser: openBrowser,
	})

	cred, err := login.Authorize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-token", cred.AccessToken)
	assert.Equal(t, "one-time-code", exchanger.exchangedCode)
}

func TestInteractiveLoginTimesOut(t *testing.T) {
	login := NewInteractiveLogin(&fakeCodeExchanger{}, InteractiveLoginConfig{
		ListenAddr:  freeAddr(t),
		Timeout:     50 * time.Millisecond,
		OpenBrowser: func(string) error { return nil },
	})

	_, err := login.Authorize(context.Background())

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInteractiveLoginEmptyCodeFails(t *testing.T) {
	addr := freeAddr(t)

	openBrowser := func(authURL string) error {
		parsed, _ := url.Parse(authURL)
		state := parsed.Query().Get("state")
		go func() {
			callback := fmt.Sprintf("http://%s/oauth?state=%s", addr, url.QueryEscape(state))
			for i := 0; i < 50; i++ {
				resp, err := http.Get(callback)
				if err == nil {
					resp.Body.Close()
					return
				}
				time.Sleep(10 * time.Millisecond)
			}
		}()
		return nil
	}

	login := NewInteractiveLogin(&fakeCodeExchanger{}, InteractiveLoginConfig{
		ListenAddr:  addr,
		Timeout:     5 * time.Second,
		OpenBrowser: openBrowser,
	})

	_, err := login.Authorize(context.Background())

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, err.Error(), "no authorization code")
}

func TestInteractiveLoginBrowserFailure(t *testing.T) {
	login := NewInteractiveLogin(&fakeCodeExchanger{}, InteractiveLoginConfig{
		ListenAddr:  freeAddr(t),
		OpenBrowser: func(string) error { return errors.New("no display") },
	})

	_, err := login.Authorize(context.Background())

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
}
