// Command authcheck is a smoke-test tool for the Refbase auth API: it signs
// in with the given credentials, bootstraps a session, and prints the
// resulting profile. Useful for verifying backend connectivity and credential
// persistence without a front-end.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/refbase/refbase-go/pkg/refbase"
)

// Config holds configuration for the authcheck run
type Config struct {
	BaseURL        string
	Email          string
	Password       string
	Locale         string
	CredentialFile string
	Timeout        time.Duration
	Verbose        bool
}

func main() {
	// Load .env if present; flags and real env still win
	_ = godotenv.Load()

	config := parseFlags()

	logger, err := newLogger(config.Verbose)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client, err := refbase.NewClient(&refbase.ClientOptions{
		BaseURL:        config.BaseURL,
		Locale:         config.Locale,
		CredentialFile: config.CredentialFile,
		Timeout:        config.Timeout,
		Logger:         &zapAdapter{sugar: logger.Sugar()},
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	manager := refbase.NewSessionManager(client, nil)

	// A persisted credential may already carry a session
	if snap := manager.Snapshot(); snap.IsAuthenticated {
		fmt.Println("Restored session from stored credential")
		printUser(snap.User)
		return
	}

	if config.Email == "" || config.Password == "" {
		log.Fatal("No stored session; -email and -password are required")
	}

	user, err := manager.SignIn(ctx, config.Email, config.Password)
	if err != nil {
		if errors.Is(err, refbase.ErrEmailNotVerified) {
			log.Fatalf("Sign-in blocked: %v", err)
		}
		if apiErr, ok := refbase.AsAPIError(err); ok {
			log.Fatalf("Sign-in failed (%d %s): %s", apiErr.StatusCode, apiErr.ErrorCode, apiErr.Message)
		}
		log.Fatalf("Sign-in failed: %v", err)
	}

	fmt.Println("Signed in")
	printUser(user)
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.BaseURL, "base-url", os.Getenv("REFBASE_API_URL"), "API base URL")
	flag.StringVar(&config.Email, "email", os.Getenv("REFBASE_EMAIL"), "account email")
	flag.StringVar(&config.Password, "password", os.Getenv("REFBASE_PASSWORD"), "account password")
	flag.StringVar(&config.Locale, "locale", "en", "message locale (en, es)")
	flag.StringVar(&config.CredentialFile, "credential-file", "", "path for credential persistence")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "request timeout")
	flag.BoolVar(&config.Verbose, "v", false, "verbose logging")
	flag.Parse()

	return config
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func printUser(user *refbase.User) {
	out, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render profile: %v", err)
	}
	fmt.Println(string(out))
}

// zapAdapter adapts a zap sugared logger to the SDK Logger interface
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func (a *zapAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.sugar.Debugw(msg, keysAndValues...)
}

func (a *zapAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.sugar.Infow(msg, keysAndValues...)
}

func (a *zapAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.sugar.Warnw(msg, keysAndValues...)
}

func (a *zapAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.sugar.Errorw(msg, keysAndValues...)
}
