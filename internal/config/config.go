package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"trscan/internal/tr"
)

type Config struct {
	DatabaseURL string
	WorkerCount int
	AliasFile   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/trscan?sslmode=disable"),
		WorkerCount: getEnvInt("WORKER_COUNT", 8),
		AliasFile:   getEnv("TRSCAN_ALIAS_FILE", ""),
	}
}

// aliasFile is the TOML shape of an alias table:
//
//	[aliases.myTr]
//	kind = "plain"
//
//	[aliases.MY_NOOP]
//	kind = "context"
//	plural = true
type aliasFile struct {
	Aliases map[string]aliasEntry `toml:"aliases"`
}

type aliasEntry struct {
	Kind   string `toml:"kind"`
	Plural bool   `toml:"plural"`
}

// LoadAliases reads extra translation function aliases from the configured
// TOML file. An unset path yields an empty table.
func (c *Config) LoadAliases() (map[string]tr.Function, error) {
	if c.AliasFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}

	var parsed aliasFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}

	aliases := make(map[string]tr.Function, len(parsed.Aliases))
	for name, entry := range parsed.Aliases {
		kind, err := parseKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
		aliases[name] = tr.Function{Kind: kind, Plural: entry.Plural}
	}

	log.Info().Int("aliases", len(aliases)).Str("file", c.AliasFile).Msg("Loaded alias table")
	return aliases, nil
}

func parseKind(s string) (tr.CallKind, error) {
	switch s {
	case "plain":
		return tr.KindPlain, nil
	case "context":
		return tr.KindContext, nil
	case "id":
		return tr.KindID, nil
	case "declare-context":
		return tr.KindDeclareContext, nil
	case "annotation":
		return tr.KindAnnotation, nil
	}
	return tr.KindNone, fmt.Errorf("unknown call kind %q", s)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
