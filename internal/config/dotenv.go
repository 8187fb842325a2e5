package config

import "github.com/joho/godotenv"

// LoadDotEnv loads a .env file into the environment for local development.
// Variables already set in the environment are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}
