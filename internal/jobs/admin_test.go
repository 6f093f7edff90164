package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline/plotline/internal/domain"
)

func staticTokens(token string) domain.CredentialSource {
	return func(ctx context.Context) (domain.Credential, error) {
		return domain.Credential{AccessToken: token}, nil
	}
}

func TestAdminClientNickname(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/owners/me/nickname", r.URL.Path)
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"nickname": "dasmad"})
	}))
	defer server.Close()

	client := NewAdminClient(AdminClientDependencies{
		BaseURL: server.URL,
		Tokens:  staticTokens("service-token"),
	})

	nickname, err := client.Nickname(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dasmad", nickname)
}

func TestAdminClientRegisterOwner(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAdminClient(AdminClientDependencies{
		BaseURL: server.URL,
		Tokens:  staticTokens("service-token"),
	})

	err := client.RegisterOwner(context.Background(), "dasmad", "pubkey-base64")
	require.NoError(t, err)
	assert.Equal(t, "dasmad", got["nickname"])
	assert.Equal(t, "pubkey-base64", got["publicKey"])
}

func TestAdminClientOwnerConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewAdminClient(AdminClientDependencies{
		BaseURL: server.URL,
		Tokens:  staticTokens("t"),
	})

	err := client.RegisterOwner(context.Background(), "dasmad", "pk")
	assert.ErrorIs(t, err, ErrOwnerTaken)
}
