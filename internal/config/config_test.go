package config_test

import (
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Nil(t, cfg.API.Throttle)
	assert.Equal(t, 7*time.Second, cfg.Undo.DeleteDelay)
	assert.Equal(t, 5*time.Second, cfg.Undo.NoticeDuration)
	assert.Equal(t, 3*time.Second, cfg.Undo.RestoredNoticeDuration)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, 8080, cfg.Monitoring.Port)
	require.ErrorIs(t, cfg.ValidateBot(), config.ErrMissingToken)
}

func TestMustLoad_FileNotExist(t *testing.T) {
	t.Setenv("CONFIG_PATH", "./invalid/path")

	assert.PanicsWithValue(t, "config error: config file does not exist: ./invalid/path", func() {
		config.MustLoad()
	})
}

func TestLoad_ReadError(t *testing.T) {
	tmpFile := filet.TmpFile(t, "", "env: [unclosed")
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	_, err := config.Load()

	require.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_FromFile(t *testing.T) {
	configContent := `
---
env: "local"
api:
  base_url: "https://hr.example.com/api"
  timeout: 3s
  throttle:
    enabled: true
    import: 1
undo:
  delete_delay: 2s
list:
  page_size: 25
telegram:
  token: test-token
  allowed_users: [1001, 1002]
monitoring:
  port: 9090
`
	tmpFile := filet.TmpFile(t, "", configContent)
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "https://hr.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, map[string]int{
		"list": 20, "create": 10, "update": 10, "delete": 10, "import": 1, "export": 5,
	}, cfg.API.Throttle)
	assert.Equal(t, 2*time.Second, cfg.Undo.DeleteDelay)
	assert.Equal(t, 5*time.Second, cfg.Undo.NoticeDuration, "unset keys keep their defaults")
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{1001, 1002}, cfg.Telegram.AllowedUsers)
	assert.Equal(t, 9090, cfg.Monitoring.Port)
	require.NoError(t, cfg.ValidateBot())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpFile := filet.TmpFile(t, "", "api:\n  base_url: http://from-file/api\n")
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", tmpFile.Name())
	t.Setenv("HESTIA_API_BASE_URL", "http://from-env/api")
	t.Setenv("HESTIA_UNDO_DELETE_DELAY", "1s")
	t.Setenv("HESTIA_TELEGRAM_TOKEN", "env-token")
	t.Setenv("HESTIA_TELEGRAM_ALLOWED_USERS", "7, 8")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "http://from-env/api", cfg.API.BaseURL)
	assert.Equal(t, time.Second, cfg.Undo.DeleteDelay)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{7, 8}, cfg.Telegram.AllowedUsers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "page size too small", key: "HESTIA_LIST_PAGE_SIZE", val: "0"},
		{name: "page size too large", key: "HESTIA_LIST_PAGE_SIZE", val: "500"},
		{name: "negative delay", key: "HESTIA_UNDO_DELETE_DELAY", val: "-1s"},
		{name: "zero timeout", key: "HESTIA_API_TIMEOUT", val: "0s"},
		{name: "bad user id", key: "HESTIA_TELEGRAM_ALLOWED_USERS", val: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()

			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
