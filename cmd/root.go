package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "resume-analyzer"
	envPrefix = "RESUME_ANALYZER"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Render RenderConfig `mapstructure:"render"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	CORSOrigins     []string      `mapstructure:"cors-origins"`
	MaxBodyBytes    int64         `mapstructure:"max-body-bytes"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type RenderConfig struct {
	DPI         int `mapstructure:"dpi"`
	JPEGQuality int `mapstructure:"jpeg-quality"`
	MaxPixels   int `mapstructure:"max-pixels"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key" json:"-"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max-attempts"`
	RetryDelay   time.Duration `mapstructure:"retry-delay"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type LogConfig struct {
	JSON       bool   `mapstructure:"json"`
	Debug      bool   `mapstructure:"debug"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-analyzer reviews a PDF resume against a job description with Gemini",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-analyzer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Nothing to configure for the version command.
	if versionCmd.CalledAs() != "" {
		return
	}

	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if err := setupViper(viper.GetViper()); err != nil {
		log.Fatalf("binding environment: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config file is fine, everything has defaults or env.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// setupViper registers defaults and environment bindings for every key.
func setupViper(v *viper.Viper) error {
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.cors-origins", []string{"*"})
	v.SetDefault("server.max-body-bytes", 20<<20)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 120*time.Second)
	v.SetDefault("server.shutdown-timeout", 10*time.Second)

	v.SetDefault("render.dpi", 150)
	v.SetDefault("render.jpeg-quality", 90)
	v.SetDefault("render.max-pixels", 16<<20)

	v.SetDefault("gemini.api-key", "")
	v.SetDefault("gemini.api-key-file", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 60*time.Second)
	v.SetDefault("gemini.max-attempts", 1)
	v.SetDefault("gemini.retry-delay", 2*time.Second)
	v.SetDefault("gemini.max-log-length", 200)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 100)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age-days", 28)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Deployments commonly provide the key as GOOGLE_API_KEY.
	if err := v.BindEnv("gemini.api-key", envPrefix+"_GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return err
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("empty configuration")
	}

	return config, nil
}
