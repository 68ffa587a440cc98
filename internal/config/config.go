// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
	"unicode/utf8"

	"roster-stamp/internal/disambiguate"
	"roster-stamp/internal/join"
	"roster-stamp/internal/matcher"
	"roster-stamp/internal/normalize"
	"roster-stamp/internal/pagetext"
	"roster-stamp/internal/paths"
	"roster-stamp/internal/roster"
	"roster-stamp/internal/stamp"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Strategy        string  `yaml:"strategy"`
		Join            string  `yaml:"join"`
		Scorer          string  `yaml:"scorer"`
		Threshold       float64 `yaml:"threshold"`
		CaseSensitive   bool    `yaml:"case_sensitive"`
		Format          string  `yaml:"format"`
		Workers         int     `yaml:"workers"`
		WeekdayLocale   string  `yaml:"weekday_locale"`
		MaxDistanceDays int     `yaml:"max_distance_days"`
		Verbose         bool    `yaml:"verbose"`
		Debug           bool    `yaml:"debug"`
		NoColor         bool    `yaml:"no_color"`
	} `yaml:"defaults"`

	// Roster workbook layout
	Roster struct {
		Sheet   string           `yaml:"sheet"`
		Columns roster.ColumnMap `yaml:"columns"`
	} `yaml:"roster"`

	Normalize struct {
		// GermanFold seeds the fold table with ä/ö/ü/ß; on by default
		GermanFold bool              `yaml:"german_fold"`
		Fold       map[string]string `yaml:"fold"`
	} `yaml:"normalize"`

	// Surnames that never decide a filename tie
	Denylist []string `yaml:"denylist"`

	OCR struct {
		Enabled       bool          `yaml:"enabled"`
		Language      string        `yaml:"language"`
		DPI           int           `yaml:"dpi"`
		PSM           int           `yaml:"psm"`
		TessdataDir   string        `yaml:"tessdata_dir"`
		Pdftoppm      string        `yaml:"pdftoppm"`
		Tesseract     string        `yaml:"tesseract"`
		Crop          pagetext.Crop `yaml:"crop"`
		MinTextLength int           `yaml:"min_text_length"`
		PageTimeout   string        `yaml:"page_timeout"`
	} `yaml:"ocr"`

	Stamp struct {
		Enabled       bool   `yaml:"enabled"`
		OutputDir     string `yaml:"output_dir"`
		stamp.Options `yaml:",inline"`
	} `yaml:"stamp"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`

	// Profiles for different rosters or scan batches
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides a subset of the defaults
type Profile struct {
	Description string `yaml:"description"`
	Strategy    string `yaml:"strategy"`
	Join        string `yaml:"join"`
	Scorer      string `yaml:"scorer"`
	Format      string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Strategy = string(matcher.StrategyExact)
	config.Defaults.Join = string(join.ModeStrict)
	config.Defaults.Scorer = matcher.DefaultScorer
	config.Defaults.Threshold = matcher.DefaultThreshold
	config.Defaults.Format = "text"
	config.Defaults.WeekdayLocale = "de"

	config.Roster.Columns = roster.DefaultColumns()

	config.Normalize.GermanFold = true
	config.Denylist = append([]string(nil), disambiguate.DefaultDenylist...)

	ocr := pagetext.DefaultOCRConfig()
	config.OCR.Language = ocr.Language
	config.OCR.DPI = ocr.DPI
	config.OCR.Pdftoppm = ocr.Pdftoppm
	config.OCR.Tesseract = ocr.Tesseract
	config.OCR.MinTextLength = pagetext.DefaultMinTextLength
	config.OCR.PageTimeout = ocr.PageTimeout.String()

	config.Stamp.Options = stamp.DefaultOptions()
	config.Stamp.OutputDir = normalizePlatformPath("./annotiert")

	config.Audit.Path = filepath.Join(paths.GetDataDir(), "audit.db")

	config.Profiles["lenient"] = Profile{
		Description: "Fuzzy names against the whole Sunday-start week",
		Strategy:    string(matcher.StrategyFuzzy),
		Join:        string(join.ModeWeek),
		Scorer:      matcher.DefaultScorer,
	}

	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultGermanFold := config.Normalize.GermanFold

	// unknown keys are usually typos that would otherwise be ignored silently
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// yaml leaves absent bools false, which would switch the fold off
	if !containsField(data, "normalize", "german_fold") {
		config.Normalize.GermanFold = defaultGermanFold
	}

	config.Stamp.OutputDir = normalizePlatformPath(config.Stamp.OutputDir)
	config.Audit.Path = normalizePlatformPath(config.Audit.Path)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory and
// then in the per-user configuration directory
func FindConfigFile() string {
	for _, name := range []string{"roster-stamp.yaml", "roster-stamp.yml", ".roster-stamp.yaml", ".roster-stamp.yml"} {
		if fileExists(name) {
			return name
		}
	}

	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	yml := filepath.Join(paths.GetConfigDir(), "config.yml")
	if fileExists(yml) {
		return yml
	}

	if runtime.GOOS != "windows" {
		if home, err := os.UserHomeDir(); err == nil {
			homeConfig := filepath.Join(home, ".roster-stamp.yaml")
			if fileExists(homeConfig) {
				return homeConfig
			}
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile copies the non-empty fields of the named profile over the
// defaults
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %v)", name, c.ListProfiles())
	}
	if profile.Strategy != "" {
		c.Defaults.Strategy = profile.Strategy
	}
	if profile.Join != "" {
		c.Defaults.Join = profile.Join
	}
	if profile.Scorer != "" {
		c.Defaults.Scorer = profile.Scorer
	}
	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	return nil
}

// FoldTable returns the effective normalization fold table
func (c *Config) FoldTable() (normalize.FoldTable, error) {
	table := normalize.FoldTable{}
	if c.Normalize.GermanFold {
		table = normalize.GermanFold()
	}
	for from, to := range c.Normalize.Fold {
		r, size := utf8.DecodeRuneInString(from)
		if r == utf8.RuneError || size != len(from) {
			return nil, fmt.Errorf("fold key %q must be a single character", from)
		}
		table[r] = to
	}
	return table, nil
}

// PageTimeout parses the OCR page timeout; an empty value uses the default
func (c *Config) PageTimeout() (time.Duration, error) {
	if c.OCR.PageTimeout == "" {
		return pagetext.DefaultOCRConfig().PageTimeout, nil
	}
	d, err := time.ParseDuration(c.OCR.PageTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid ocr.page_timeout %q: %w", c.OCR.PageTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ocr.page_timeout must be positive, got %s", d)
	}
	return d, nil
}

// OCRConfig converts the ocr section to the extractor's settings
func (c *Config) OCRConfig() (pagetext.OCRConfig, error) {
	timeout, err := c.PageTimeout()
	if err != nil {
		return pagetext.OCRConfig{}, err
	}
	return pagetext.OCRConfig{
		Pdftoppm:    c.OCR.Pdftoppm,
		Tesseract:   c.OCR.Tesseract,
		Language:    c.OCR.Language,
		DPI:         c.OCR.DPI,
		PSM:         c.OCR.PSM,
		TessdataDir: c.OCR.TessdataDir,
		Crop:        c.OCR.Crop,
		PageTimeout: timeout,
	}, nil
}

// RosterOptions converts the roster section to parser options
func (c *Config) RosterOptions() roster.Options {
	return roster.Options{
		Sheet:         c.Roster.Sheet,
		Columns:       c.Roster.Columns,
		WeekdayLocale: c.Defaults.WeekdayLocale,
	}
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

func normalizePlatformPath(path string) string {
	if path == "" {
		return ""
	}
	return paths.NormalizePath(path)
}

// ValidateConfig checks enum values, ranges and paths
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	d := config.Defaults
	if _, err := matcher.ParseStrategy(d.Strategy); err != nil {
		return fmt.Errorf("defaults.strategy: %w", err)
	}
	if _, err := join.ParseMode(d.Join); err != nil {
		return fmt.Errorf("defaults.join: %w", err)
	}
	if d.Threshold < 0 || d.Threshold > 100 {
		return fmt.Errorf("defaults.threshold must be within 0-100, got %g", d.Threshold)
	}
	if d.Workers < 0 {
		return fmt.Errorf("defaults.workers cannot be negative")
	}
	if d.MaxDistanceDays < 0 {
		return fmt.Errorf("defaults.max_distance_days cannot be negative")
	}
	if !roster.SupportedLocale(d.WeekdayLocale) {
		return fmt.Errorf("defaults.weekday_locale %q is not supported", d.WeekdayLocale)
	}

	if err := config.Roster.Columns.Validate(); err != nil {
		return fmt.Errorf("roster.columns: %w", err)
	}
	if _, err := config.FoldTable(); err != nil {
		return fmt.Errorf("normalize.fold: %w", err)
	}
	if _, err := config.PageTimeout(); err != nil {
		return err
	}
	if config.OCR.DPI < 0 || config.OCR.MinTextLength < 0 {
		return fmt.Errorf("ocr.dpi and ocr.min_text_length cannot be negative")
	}
	if config.Stamp.FontSize < 0 {
		return fmt.Errorf("stamp.font_size cannot be negative")
	}

	if err := validateConfigPaths(config); err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	for name, profile := range config.Profiles {
		if profile.Strategy != "" {
			if _, err := matcher.ParseStrategy(profile.Strategy); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
		if profile.Join != "" {
			if _, err := join.ParseMode(profile.Join); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
	}

	return nil
}

func validateConfigPaths(config *Config) error {
	for field, p := range map[string]string{
		"stamp.output_dir": config.Stamp.OutputDir,
		"audit.path":       config.Audit.Path,
		"ocr.tessdata_dir": config.OCR.TessdataDir,
		"ocr.pdftoppm":     config.OCR.Pdftoppm,
		"ocr.tesseract":    config.OCR.Tesseract,
	} {
		if err := paths.ValidatePath(p); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches the
// standard locations when configFile is empty). The returned error is
// non-nil when a file was found but could not be used; the config is then
// the built-in default.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}
