package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("INT_KEY", "12")
	t.Setenv("BAD_INT_KEY", "twelve")
	t.Setenv("BOOL_KEY", "true")

	assert.Equal(t, 12, GetEnvAsType("INT_KEY", 1))
	assert.Equal(t, 1, GetEnvAsType("BAD_INT_KEY", 1))
	assert.Equal(t, true, GetEnvAsType("BOOL_KEY", false))
	assert.Equal(t, "fallback", GetEnvAsType("UNSET_STRING_KEY", "fallback"))
}

func TestLoadConfig(t *testing.T) {
	vars := []string{
		"APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET", "TELEGRAM_BOT_TOKEN",
		"DB_DRIVER", "DB_PATH", "JWT_TTL_HOURS", "NEWSLETTER_WORKERS", "CORS_ALLOWED_ORIGINS",
	}
	cleanupTestEnv := func() {
		for _, v := range vars {
			os.Unsetenv(v)
		}
	}

	t.Run("successful config load with all env vars", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_PORT", "9000")
		os.Setenv("APP_HOST", "0.0.0.0")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("JWT_SECRET", "super_secret_jwt_key")
		os.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")
		os.Setenv("DB_DRIVER", "postgres")
		os.Setenv("JWT_TTL_HOURS", "2")
		os.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, "postgres", config.DBDriver)
		assert.Equal(t, 2*time.Hour, config.JWTTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSOrigins)
		assert.Equal(t, "postgres", config.Database().Driver)
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_PORT", "not_a_number")
		os.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")

		config, err := LoadConfig()
		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail without bot token", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()

		config, err := LoadConfig()
		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with unknown driver", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")
		os.Setenv("DB_DRIVER", "oracle")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, 24*time.Hour, config.InitDataMaxAge)
		assert.Equal(t, 4, config.NewsletterWorkers)
		assert.Equal(t, []string{"*"}, config.CORSOrigins)
	})

	t.Run("String redacts secrets", func(t *testing.T) {
		c := &Config{JWTSecret: "top-secret", TelegramBotToken: "bot-secret", DBPassword: "pw"}
		s := c.String()
		assert.NotContains(t, s, "top-secret")
		assert.NotContains(t, s, "bot-secret")
		assert.Contains(t, s, "[REDACTED]")
	})
}

// Benchmark tests (optional but good practice)
func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
