// Package config provides centralized configuration management for the dashboard.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern STARTUPDASH_<SECTION>_<FIELD>:
//
//	STARTUPDASH_SERVER_PORT=8080
//	STARTUPDASH_DATASET_PATH=/data/investments_VC.csv
//	STARTUPDASH_DATASET_ENCODING=ISO-8859-1
//	STARTUPDASH_DATASET_TARGET_COUNTRY=IND
//	STARTUPDASH_LOGGING_LEVEL=debug
//	STARTUPDASH_EXPORT_ARTIFACT_TTL=10m
//
// # Configuration File
//
// When no file is passed explicitly, config.yaml is searched in the working
// directory and in configs/:
//
//	server:
//	  port: 8080
//	dataset:
//	  path: investments_VC.csv
//	  default_year_min: 2000
//	  default_year_max: 2024
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return fmt.Errorf("failed to load configuration: %w", err)
//	}
//	addr := cfg.Address()
package config
