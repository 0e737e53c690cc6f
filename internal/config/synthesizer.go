package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// EnvVariable is one line of a synthesized .env file
type EnvVariable struct {
	Key         string
	Value       string
	Type        string
	Generated   bool
	Description string
}

// Synthesizer writes the .env file read by the live-site tests
type Synthesizer struct {
	outputPath string
	variables  []EnvVariable
	now        func() time.Time
}

func NewSynthesizer(outputPath string) *Synthesizer {
	return &Synthesizer{
		outputPath: outputPath,
		variables:  make([]EnvVariable, 0),
		now:        time.Now,
	}
}

// GeneratePassword returns a URL-safe random password of at least 12
// characters. The "Aa1" suffix guarantees mixed character classes.
func GeneratePassword(length int) (string, error) {
	if length < 12 {
		length = 12
	}
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	result := base64.RawURLEncoding.EncodeToString(bytes)
	return result[:length-3] + "Aa1", nil
}

// Synthesize writes the .env file. Existing values are kept unless rotate
// is set, in which case generated secrets are replaced.
func (s *Synthesizer) Synthesize(rotate bool) error {
	existing := s.loadExistingEnv()
	if err := s.generateVariables(existing, rotate); err != nil {
		return err
	}
	if err := s.writeEnvFile(); err != nil {
		return fmt.Errorf("failed to write .env file: %w", err)
	}
	return nil
}

func (s *Synthesizer) loadExistingEnv() map[string]string {
	vars, err := godotenv.Read(s.outputPath)
	if err != nil {
		return map[string]string{}
	}
	return vars
}

func (s *Synthesizer) generateVariables(existing map[string]string, rotate bool) error {
	password, err := GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}

	s.variables = s.variables[:0]
	s.section("# Site under test")
	s.static(existing, "BASE_URL", "https://automationexercise.com", "site root")
	s.static(existing, "BLOCK_ADS", "true", "abort ad network requests")
	s.blank()

	s.section("# Browser")
	s.static(existing, "HEADLESS", "true", "")
	s.static(existing, "SLOW_MO", "0", "milliseconds between actions")
	s.static(existing, "E2E_TIMEOUT", "15s", "element wait window")
	s.static(existing, "SKIP_BROWSER", "false", "skip every browser case")
	s.blank()

	s.section("# Output")
	s.static(existing, "E2E_RESULTS_DIR", "test-results", "")
	s.static(existing, "SCREENSHOTS", "true", "")
	s.static(existing, "SCREENSHOTS_ON_PASS", "false", "")
	s.static(existing, "VIDEOS", "false", "")
	s.blank()

	s.section("# Accounts created by the account cases")
	s.variables = append(s.variables, EnvVariable{
		Key:         "E2E_PASSWORD",
		Value:       getOrGenerate(existing, "E2E_PASSWORD", password, rotate),
		Type:        "secret",
		Generated:   rotate || existing["E2E_PASSWORD"] == "",
		Description: "password of throwaway accounts",
	})
	return nil
}

func (s *Synthesizer) section(title string) {
	s.variables = append(s.variables, EnvVariable{Key: title, Type: "section"})
}

func (s *Synthesizer) blank() {
	s.variables = append(s.variables, EnvVariable{Type: "blank"})
}

func (s *Synthesizer) static(existing map[string]string, key, def, desc string) {
	s.variables = append(s.variables, EnvVariable{
		Key:         key,
		Value:       getOrDefault(existing, key, def),
		Type:        "static",
		Description: desc,
	})
}

func getOrDefault(existing map[string]string, key, defaultValue string) string {
	if val, ok := existing[key]; ok {
		return val
	}
	return defaultValue
}

func getOrGenerate(existing map[string]string, key, newValue string, rotate bool) string {
	if rotate {
		return newValue
	}
	if val, ok := existing[key]; ok && val != "" {
		return val
	}
	return newValue
}

func (s *Synthesizer) writeEnvFile() error {
	if _, err := os.Stat(s.outputPath); err == nil {
		backupPath := fmt.Sprintf("%s.backup.%s", s.outputPath, s.now().Format("20060102_150405"))
		if err := copyFile(s.outputPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup existing .env: %w", err)
		}
	}

	file, err := os.OpenFile(s.outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	for _, v := range s.variables {
		switch v.Type {
		case "section":
			fmt.Fprintln(file, v.Key)
		case "blank":
			fmt.Fprintln(file)
		default:
			line, err := godotenv.Marshal(map[string]string{v.Key: v.Value})
			if err != nil {
				return err
			}
			fmt.Fprintln(file, line)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // G304 false positive - config copy
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

// Variables returns the lines of the last Synthesize call
func (s *Synthesizer) Variables() []EnvVariable {
	return s.variables
}

func (s *Synthesizer) GetGeneratedCount() int {
	count := 0
	for _, v := range s.variables {
		if v.Generated {
			count++
		}
	}
	return count
}
