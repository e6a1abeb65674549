package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Store engines
const (
	EngineMemory   = "memory"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"
)

type (
	StoreConfig struct {
		Engine string
		DSN    string
		Prefix string // prepended to every persisted key
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	SeedConfig struct {
		Enabled   bool
		RosterURL string
		Timeout   time.Duration
	}

	ServerConfig struct {
		Address            string
		JWTExpirationDelta time.Duration
	}

	Config struct {
		Env             string // DEV (local; default), TEST, QA, PROD
		Debug           bool
		TestMode        bool
		AppName         string
		Build           string
		SecretKey       string
		PasswordHashing string // plaintext | bcrypt
		RollbarToken    string

		Server ServerConfig
		Store  StoreConfig
		Redis  RedisConfig
		Seed   SeedConfig
	}
)

// LoadConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Env vars are prefixed with the upper-cased env name, eg. DEV_STORE_ENGINE=redis.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Marksheet")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k9$2v!qz-ml0c^a8+ejd*7h#w1b@x5ru&g3tn(y6)pf=4so_i")
	v.SetDefault("passwordHashing", "plaintext")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("store.engine", EngineSQLite)
	v.SetDefault("store.dsn", "file:marksheet.db?cache=shared")
	v.SetDefault("store.prefix", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.rosterURL", "https://webapi-eiw9.onrender.com/jobs")
	v.SetDefault("seed.timeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	confDir := os.Getenv("CONFIG_DIR")
	if confDir == "" {
		confDir = "config"
	}
	dotEnvPath := filepath.Join(confDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		SecretKey:       v.GetString("secretKey"),
		PasswordHashing: strings.ToLower(v.GetString("passwordHashing")),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Store: StoreConfig{
			Engine: strings.ToLower(v.GetString("store.engine")),
			DSN:    v.GetString("store.dsn"),
			Prefix: v.GetString("store.prefix"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Seed: SeedConfig{
			Enabled:   v.GetBool("seed.enabled"),
			RosterURL: v.GetString("seed.rosterURL"),
			Timeout:   v.GetDuration("seed.timeout"),
		},
	}
	return conf, conf.validate()
}

func (conf *Config) validate() error {
	switch conf.Store.Engine {
	case EngineMemory, EngineRedis, EnginePostgres, EngineSQLite:
	default:
		return errors.Errorf("unknown store engine %q", conf.Store.Engine)
	}
	if conf.Seed.Timeout <= 0 {
		return errors.New("seed timeout must be positive")
	}
	return nil
}
