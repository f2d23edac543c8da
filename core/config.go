package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings. It is built once in main and injected
// into the components that need it; there are no ambient singletons.
type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	Build    string

	AppName          string
	SecretKey        []byte
	FrontendBaseURL  string
	DefaultFromEmail string

	// AdminEmail identifies the single privileged account. A user is an
	// admin iff their email equals this value.
	AdminEmail string

	SendgridAPIKey string
	RollbarToken   string

	PasswordResetTimeoutDelta time.Duration

	Server struct {
		Host            string
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Database struct {
		Host       string // empty disables Postgres; repos fall back to memory
		Port       int
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	// LocalDataDir is where the device-scoped fallback store keeps its JSON
	// files when no durable store or identity is available.
	LocalDataDir string

	Practice PracticeConfig
}

// PracticeConfig groups the practice-domain constants.
type PracticeConfig struct {
	// DefaultTier is the achievement tier assumed for a drill the user has
	// never been scored on. The original app is inconsistent here (one
	// revision falls back to the highest tier, another to the lowest), so the
	// choice is an explicit setting. We ship the lowest.
	DefaultTier string

	// RequirementTier is the tier whose achievement text the session executor
	// parses the target count from. The original always reads tier1 no matter
	// what tier the user holds; preserved as-is.
	RequirementTier string

	// DefaultTargetCount is used when no integer can be parsed from the
	// achievement text.
	DefaultTargetCount int

	// ImportDefaultDuration is the drill duration (minutes) substituted when
	// a bulk-import row has an unparseable duration.
	ImportDefaultDuration int

	// WarmupMinutes is reserved off the top of every generated practice plan.
	WarmupMinutes int

	// AddedAckDelay is how long the "drill added" acknowledgment stays valid
	// before clients must clear it.
	AddedAckDelay time.Duration
}

// NewConfig loads settings from defaults, an optional config/.env.<env> file
// and ENV-prefixed environment variables, in increasing priority.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults (DEV)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CactusGolf")
	v.SetDefault("secretKey", "t3mp0-c0ntr0l-(dr1v3r)-f1nd.the.fairway!")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("adminEmail", "admin@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", "localhost:6060")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "cactusgolf")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("localDataDir", "data")

	v.SetDefault("practice.defaultTier", "tier1")
	v.SetDefault("practice.requirementTier", "tier1")
	v.SetDefault("practice.defaultTargetCount", 5)
	v.SetDefault("practice.importDefaultDuration", 10)
	v.SetDefault("practice.warmupMinutes", 5)
	v.SetDefault("practice.addedAckDelay", 2*time.Second)

	env := os.Getenv("ENV") // DEV (default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		Build:    v.GetString("build"),

		AppName:          v.GetString("appName"),
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		AdminEmail:       v.GetString("adminEmail"),

		SendgridAPIKey: v.GetString("sendgridAPIKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		LocalDataDir: v.GetString("localDataDir"),
	}

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Addr = v.GetString("server.addr")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwtRefreshExpirationDelta")

	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Practice.DefaultTier = v.GetString("practice.defaultTier")
	conf.Practice.RequirementTier = v.GetString("practice.requirementTier")
	conf.Practice.DefaultTargetCount = v.GetInt("practice.defaultTargetCount")
	conf.Practice.ImportDefaultDuration = v.GetInt("practice.importDefaultDuration")
	conf.Practice.WarmupMinutes = v.GetInt("practice.warmupMinutes")
	conf.Practice.AddedAckDelay = v.GetDuration("practice.addedAckDelay")

	return conf
}
