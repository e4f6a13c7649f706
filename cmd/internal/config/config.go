package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	envVarsPrefix = "/newsnotes/prod/"
	ssmRegion     = "us-east-2"

	AuthProviderLocal   = "local"
	AuthProviderCognito = "cognito"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Production bool
	HTTPAddr   string
	LogLevel   string
	MachineID  int64

	DBDriver string
	DBPath   string
	DBDSN    string

	NewsCountOnHomePage int
	HomeCacheTTL        time.Duration
	LoginURL            string

	AuthProvider       string
	SessionSecret      string
	SessionTTL         time.Duration
	CognitoRegion      string
	CognitoAppClientID string
	CognitoPoolID      string

	S3Region string
	S3Bucket string

	WSGatewayEndpoint string
	WSGatewayRegion   string
}

// Load exports the environment for the current stage and reads it into a Config.
func Load(ctx context.Context) (*Config, error) {
	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		if err := loadProdEnv(ctx); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Production: os.Getenv("GO_ENV") == "production",
		HTTPAddr:   getString("HTTP_ADDR", ":7070"),
		LogLevel:   getString("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getString("DB_DRIVER", DriverSQLite)),
		DBPath:   getString("DB_PATH", "database.db"),
		DBDSN:    os.Getenv("DB_DSN"),

		LoginURL: getString("LOGIN_URL", "/auth/login/"),

		AuthProvider:       strings.ToLower(getString("AUTH_PROVIDER", AuthProviderLocal)),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		CognitoRegion:      os.Getenv("AWS_COGNITO_REGION"),
		CognitoAppClientID: os.Getenv("COGNITO_APP_CLIENT_ID"),
		CognitoPoolID:      os.Getenv("COGNITO_POOL_ID"),

		S3Region: os.Getenv("AWS_S3_REGION"),
		S3Bucket: os.Getenv("S3_BUCKET_NAME"),

		WSGatewayEndpoint: os.Getenv("WS_GATEWAY_ENDPOINT"),
		WSGatewayRegion:   os.Getenv("WS_GATEWAY_REGION"),
	}

	var err error
	if cfg.MachineID, err = getInt64("MACHINE_ID", 1); err != nil {
		return nil, err
	}

	count, err := getInt64("NEWS_COUNT_ON_HOME_PAGE", 10)
	if err != nil {
		return nil, err
	}
	cfg.NewsCountOnHomePage = int(count)

	if cfg.HomeCacheTTL, err = getDuration("HOME_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.AuthProvider {
	case AuthProviderLocal:
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 bytes long")
		}
	case AuthProviderCognito:
		if c.CognitoRegion == "" || c.CognitoAppClientID == "" || c.CognitoPoolID == "" {
			return errors.New("AWS_COGNITO_REGION, COGNITO_APP_CLIENT_ID and COGNITO_POOL_ID are required when AUTH_PROVIDER=cognito")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.NewsCountOnHomePage <= 0 {
		return errors.New("NEWS_COUNT_ON_HOME_PAGE must be positive")
	}
	return nil
}

// LiveCommentsEnabled reports whether an API Gateway websocket endpoint is configured.
func (c *Config) LiveCommentsEnabled() bool {
	return c.WSGatewayEndpoint != ""
}

// loadProdEnv exports every parameter under envVarsPrefix from AWS SSM Parameter Store.
func loadProdEnv(ctx context.Context) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(ssmRegion))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	loaded := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("unable to load prod environment: %w", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := (*param.Name)[prefixLength:]
			if err := os.Setenv(key, aws.ToString(param.Value)); err != nil {
				return fmt.Errorf("unable to set environment variable: %w", err)
			}
			loaded++
		}
	}
	log.Debugf("loaded %d prod environment variables", loaded)
	return nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return val, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return val, nil
}
