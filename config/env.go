package config

import (
	"github.com/joho/godotenv"
)

// Load environment variables from .env if present

func LoadEnv() {
	err := godotenv.Load()

	if err != nil {
		Logger.Warn("No .env file loaded, falling back to process environment: ", err)
	}
}
