package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfg *Config
	mu  sync.RWMutex
)

// Config represents the harness configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Site        SiteConfig        `mapstructure:"site"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Reports     ReportsConfig     `mapstructure:"reports"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots"`
	Fixtures    FixturesConfig    `mapstructure:"fixtures"`
	Suites      SuitesConfig      `mapstructure:"suites"`
	History     HistoryConfig     `mapstructure:"history"`
	Schedule    []ScheduleEntry   `mapstructure:"schedule"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type SiteConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	BlockAds bool   `mapstructure:"block_ads"`
}

type BrowserConfig struct {
	Engine         string        `mapstructure:"engine"`
	Headless       bool          `mapstructure:"headless"`
	SlowMo         int           `mapstructure:"slow_mo"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
	Install        bool          `mapstructure:"install"`
	VideoDir       string        `mapstructure:"video_dir"`
}

type ReportsConfig struct {
	Dir         string `mapstructure:"dir"`
	Title       string `mapstructure:"title"`
	Timestamped bool   `mapstructure:"timestamped"`
	JUnit       bool   `mapstructure:"junit"`
}

type ScreenshotsConfig struct {
	Dir    string `mapstructure:"dir"`
	OnPass bool   `mapstructure:"on_pass"`
}

type FixturesConfig struct {
	Dir       string   `mapstructure:"dir"`
	Sentinels []string `mapstructure:"sentinels"`
}

type SuitesConfig struct {
	Manifest string `mapstructure:"manifest"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ScheduleEntry binds a suite to a cron expression (seconds field included)
type ScheduleEntry struct {
	Name    string        `mapstructure:"name"`
	Suite   string        `mapstructure:"suite"`
	Cron    string        `mapstructure:"cron"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// setDefaults mirrors config/default.yaml so the harness runs without any file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shopcheck")
	v.SetDefault("app.env", "local")

	v.SetDefault("site.base_url", "https://automationexercise.com")
	v.SetDefault("site.block_ads", true)

	v.SetDefault("browser.engine", "chromium")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", 0)
	v.SetDefault("browser.timeout", 15*time.Second)
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 720)
	v.SetDefault("browser.install", true)
	v.SetDefault("browser.video_dir", "")

	v.SetDefault("reports.dir", "reports")
	v.SetDefault("reports.title", "Automation Exercise")
	v.SetDefault("reports.timestamped", true)
	v.SetDefault("reports.junit", false)

	v.SetDefault("screenshots.dir", "screenshots")
	v.SetDefault("screenshots.on_pass", false)

	v.SetDefault("fixtures.dir", "fixtures")
	v.SetDefault("fixtures.sentinels", []string{"(blank)", "N/A", "null", "none", "-"})

	v.SetDefault("suites.manifest", "suites.yaml")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "shopcheck.db")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8088)

	v.SetDefault("logging.level", "info")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("SHOPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readLayers reads default.yaml then merges config.yaml; both are optional
func readLayers(v *viper.Viper, configPath string) error {
	if configPath == "" {
		return nil
	}
	v.SetConfigName("default")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read default config: %w", err)
		}
	}

	v.SetConfigName("config")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to merge config: %w", err)
		}
	}
	return nil
}

// build reads every layer under configPath into a validated Config
func build(configPath string) (*Config, error) {
	v := newViper(configPath)
	if err := readLayers(v, configPath); err != nil {
		return nil, err
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Load reads the configuration from configPath and installs it as the current config
func Load(configPath string) (*Config, error) {
	loaded, err := build(configPath)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return loaded, nil
}

// LoadFromFile reads a single YAML file without the default/config layering
func LoadFromFile(configFile string) (*Config, error) {
	v := newViper("")
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return loaded, nil
}

// layerNames are the config file names, without extension, that trigger a reload
var layerNames = map[string]bool{"default": true, "config": true}

// Watch reloads the configuration when default.yaml or config.yaml under
// configPath is written, created, renamed or removed. Every reload rebuilds
// all layers, and a reload that fails validation keeps the current config.
// The watcher stops when ctx is done.
func Watch(ctx context.Context, configPath string) error {
	if configPath == "" {
		return errors.New("watch needs a config directory")
	}
	if info, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("config directory: %s is not a directory", configPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files by rename, so the directory is watched instead of each file.
	if err := watcher.Add(configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isLayerEvent(e) {
					continue
				}
				log.Printf("[config] file changed: %s", e.Name)
				reload(configPath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v", err)
			}
		}
	}()
	return nil
}

func isLayerEvent(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) && !e.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(e.Name)
	return layerNames[strings.TrimSuffix(base, filepath.Ext(base))]
}

func reload(configPath string) {
	newCfg, err := build(configPath)
	if err != nil {
		log.Printf("[config] rejected reload: %v", err)
		return
	}

	mu.Lock()
	cfg = newCfg
	mu.Unlock()
	log.Println("[config] configuration reloaded")
}

// Get returns the current configuration (thread-safe).
// It falls back to built-in defaults when Load was never called.
func Get() *Config {
	mu.RLock()
	current := cfg
	mu.RUnlock()
	if current != nil {
		return current
	}

	d, _ := Default()
	return d
}

// Default returns the built-in defaults with environment overrides applied
func Default() (*Config, error) {
	v := newViper("")
	d := &Config{}
	if err := v.Unmarshal(d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	return d, nil
}

// URL joins the base URL and a site-relative path
func (c SiteConfig) URL(path string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if path == "" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Addr returns the server listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug reports whether debug logging is enabled
func (c LoggingConfig) IsDebug() bool {
	return strings.EqualFold(c.Level, "debug")
}
