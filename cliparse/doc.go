// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string or sqlite file (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - IPHashSalt: Secret for hashing submitter IPs (required)
  - RoundTitle: Topic shown to voters (optional)
  - MaxImageBytes: Upload size cap, parsed from strings like "8 MB"
  - RankMethod: "average" (default) or "wilson"
  - SubmitRate / SubmitBurst: token bucket for POST /votes

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	--ip-salt      IP hash salt
	--title        Round title
	--max-image    Image size cap
	--rank         Rank method
	--submit-rate  Submissions per second
	--submit-burst Submission burst

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	IP_HASH_SALT   → --ip-salt
	ROUND_TITLE    → --title
	MAX_IMAGE_SIZE → --max-image
	RANK_METHOD    → --rank
	SUBMIT_RATE    → --submit-rate
	SUBMIT_BURST   → --submit-burst

CLI flags take precedence over environment variables. LoadEnvFile reads a
.env file into the environment first; variables already set are kept.

# Validation

ParseFlags returns an error if required values are missing or a value is
out of range. Field constraints are declared as validator tags on Config.
*/
package cliparse
