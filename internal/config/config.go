package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunables for the bidding engine and its HTTP server.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Bidding   BiddingConfig   `mapstructure:"bidding"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Fraud     FraudConfig     `mapstructure:"fraud"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// BiddingConfig controls the bid-acceptance pipeline.
type BiddingConfig struct {
	// SnipeWindow is how close to the end a bid must land to trigger an
	// extension; SnipeExtension is the new remaining time after it does.
	SnipeWindow    time.Duration `mapstructure:"snipe_window"`
	SnipeExtension time.Duration `mapstructure:"snipe_extension"`
	// CASRetries bounds the optimistic-retry loop on a lost race.
	CASRetries int `mapstructure:"cas_retries"`
	// PersistTimeout bounds the store commit; exceeding it yields Timeout.
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
	// RequireSolvency enables the connects-balance pre-check before accepting.
	RequireSolvency bool `mapstructure:"require_solvency"`
	// MaxProxyDepth caps proxy-bid cascades.
	MaxProxyDepth int `mapstructure:"max_proxy_depth"`
	// DuplicateWindow is how long an identical submission is coalesced.
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

// RateLimitConfig holds per-class fixed-window quotas.
type RateLimitConfig struct {
	BidLimit          int           `mapstructure:"bid_limit"`
	BidWindow         time.Duration `mapstructure:"bid_window"`
	RapidBidLimit     int           `mapstructure:"rapid_bid_limit"`
	RapidBidWindow    time.Duration `mapstructure:"rapid_bid_window"`
	RewardClaimLimit  int           `mapstructure:"reward_claim_limit"`
	RewardClaimWindow time.Duration `mapstructure:"reward_claim_window"`
	// ViolationThreshold is how many quota breaches in one window lineage
	// escalate the identifier to the fraud detector.
	ViolationThreshold int `mapstructure:"violation_threshold"`
}

// FraudConfig holds the behavioral-heuristic thresholds.
type FraudConfig struct {
	LastSecondWindow    time.Duration `mapstructure:"last_second_window"`
	LastSecondThreshold int           `mapstructure:"last_second_threshold"`
	RapidFireWindow     time.Duration `mapstructure:"rapid_fire_window"`
	RapidFireThreshold  int           `mapstructure:"rapid_fire_threshold"`
	BurstThreshold      int           `mapstructure:"burst_threshold"`
}

// Default returns the configuration used when no config file overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: ":8080"},
		Bidding: BiddingConfig{
			SnipeWindow:     30 * time.Second,
			SnipeExtension:  120 * time.Second,
			CASRetries:      3,
			PersistTimeout:  2 * time.Second,
			RequireSolvency: false,
			MaxProxyDepth:   50,
			DuplicateWindow: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			BidLimit:           10,
			BidWindow:          time.Minute,
			RapidBidLimit:      3,
			RapidBidWindow:     10 * time.Second,
			RewardClaimLimit:   10,
			RewardClaimWindow:  24 * time.Hour,
			ViolationThreshold: 3,
		},
		Fraud: FraudConfig{
			LastSecondWindow:    5 * time.Second,
			LastSecondThreshold: 4,
			RapidFireWindow:     30 * time.Second,
			RapidFireThreshold:  5,
			BurstThreshold:      3,
		},
	}
}

// Load reads config.yaml from the given path and merges it over the defaults.
// A missing file is not an error; the defaults apply as-is.
func Load(configPath string) (Config, error) {
	cfg := Default()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read config file: %w", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode config file: %w", err)
	}
	return cfg, nil
}
