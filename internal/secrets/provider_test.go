package secrets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/richat-partners/staffing-api/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVault map[string]string

func (s stubVault) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      secrets.SecretSource
		environment string
		want        secrets.SecretSource
	}{
		{secrets.SourceAuto, "development", secrets.SourceEnvironment},
		{secrets.SourceAuto, "", secrets.SourceEnvironment},
		{secrets.SourceAuto, "production", secrets.SourceVault},
		{secrets.SourceEnvironment, "production", secrets.SourceEnvironment},
		{secrets.SourceVault, "development", secrets.SourceVault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, secrets.ResolveSource(tt.source, tt.environment), "%s/%s", tt.source, tt.environment)
	}
}

func TestProvider_EnvironmentSource(t *testing.T) {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, provider.IsVaultEnabled())

	t.Setenv("RICHAT_TEST_SECRET", "s3cret")
	value, err := provider.GetSecret(context.Background(), "RICHAT_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = provider.GetSecret(context.Background(), "RICHAT_TEST_MISSING")
	assert.Error(t, err)
}

func TestProvider_VaultRequiresName(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceVault}, zap.NewNop())
	assert.ErrorContains(t, err, "vault name required")
}

func TestProvider_GetSecretOrEnvPrefersEnvironment(t *testing.T) {
	provider := secrets.NewProviderWithGetter(stubVault{"admin-api-key": "from-vault"}, zap.NewNop())
	ctx := context.Background()

	value, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "RICHAT_TEST_ADMIN_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", value)

	t.Setenv("RICHAT_TEST_ADMIN_KEY", "from-env")
	value, err = provider.GetSecretOrEnv(ctx, "admin-api-key", "RICHAT_TEST_ADMIN_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	_, err = provider.GetSecretOrEnv(ctx, "amqp-url", "RICHAT_TEST_AMQP_URL")
	assert.Error(t, err)
}
