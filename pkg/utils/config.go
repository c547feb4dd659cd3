package utils

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at process start.
// It is immutable after Load and passed explicitly to every component;
// nothing reads the environment after startup.
type Config struct {
	Port      string
	AuthToken string

	ComicVineAPIKey string
	ComicVineBase   string

	OpenLibraryBase string

	GoogleBooksAPIKey string
	GoogleBooksBase   string

	MetronBase     string
	MetronUsername string
	MetronPassword string

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from a .env file (if present) and the
// environment. Missing optional values fall back to public defaults;
// an empty AuthToken disables auth entirely.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      envOr("NOIR_PORT", "4000"),
		AuthToken: os.Getenv("NOIR_AUTH_TOKEN"),

		ComicVineAPIKey: os.Getenv("NOIR_COMICVINE_API_KEY"),
		ComicVineBase:   envOr("NOIR_COMICVINE_BASE", "https://comicvine.gamespot.com/api"),

		OpenLibraryBase: envOr("NOIR_OPEN_LIBRARY_BASE", "https://openlibrary.org"),

		GoogleBooksAPIKey: os.Getenv("NOIR_GOOGLE_BOOKS_API_KEY"),
		GoogleBooksBase:   envOr("NOIR_GOOGLE_BOOKS_BASE", "https://www.googleapis.com/books/v1"),

		MetronBase:     envOr("NOIR_METRON_BASE", "https://metron.cloud/api"),
		MetronUsername: os.Getenv("NOIR_METRON_USERNAME"),
		MetronPassword: os.Getenv("NOIR_METRON_PASSWORD"),

		LogLevel:  envOr("NOIR_LOG_LEVEL", "info"),
		LogFormat: envOr("NOIR_LOG_FORMAT", "text"),
	}
}

// HasComicVine reports whether the ComicVine client is usable.
func (c Config) HasComicVine() bool { return c.ComicVineAPIKey != "" }

// HasMetron reports whether the Metron client is usable.
func (c Config) HasMetron() bool { return c.MetronUsername != "" && c.MetronPassword != "" }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
