package vault

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root-token" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"errors":["permission denied"]}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/secret/data/payments/stripe":
			fmt.Fprint(w, `{"data":{"data":{"secret_key":"sk_test_from_vault"},"metadata":{"version":3}}}`)
		case "/v1/kv/stripe":
			fmt.Fprint(w, `{"data":{"api_key":"sk_test_v1"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":[]}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReadStripeSecretKey_KVv2(t *testing.T) {
	srv := newFakeVault(t)
	sm, err := NewSecretManager(srv.URL, "root-token")
	require.NoError(t, err)

	key, err := sm.ReadStripeSecretKey(context.Background(), "secret/data/payments/stripe", "")

	require.NoError(t, err)
	assert.Equal(t, "sk_test_from_vault", key)
}

func TestReadString_KVv1(t *testing.T) {
	srv := newFakeVault(t)
	sm, err := NewSecretManager(srv.URL, "root-token")
	require.NoError(t, err)

	key, err := sm.ReadString(context.Background(), "kv/stripe", "api_key")

	require.NoError(t, err)
	assert.Equal(t, "sk_test_v1", key)
}

func TestReadString_Missing(t *testing.T) {
	srv := newFakeVault(t)
	sm, err := NewSecretManager(srv.URL, "root-token")
	require.NoError(t, err)

	_, err = sm.ReadString(context.Background(), "secret/data/nothing", "secret_key")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = sm.ReadString(context.Background(), "secret/data/payments/stripe", "other_key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestReadString_PermissionDenied(t *testing.T) {
	srv := newFakeVault(t)
	sm, err := NewSecretManager(srv.URL, "wrong-token")
	require.NoError(t, err)

	_, err = sm.ReadString(context.Background(), "secret/data/payments/stripe", "secret_key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSecretNotFound)
}
