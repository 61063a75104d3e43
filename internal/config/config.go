// Package config loads and validates application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ridgelinecap/dealmatch/internal/common"
	"github.com/ridgelinecap/dealmatch/internal/service"
)

// Default configuration values. Thresholds and stage sets are deployment
// concerns; everything here can be overridden via config file or environment.
const (
	DefaultAcceptanceThreshold = 95
	DefaultSearchDelay         = 300 * time.Millisecond
	DefaultRequestTimeout      = 30 * time.Second
	DefaultMaxRetries          = 3
	DefaultRetryBaseDelay      = time.Second

	// DefaultAssociationTypeID is the store's fixed email-to-deal
	// association type.
	DefaultAssociationTypeID = 210
)

// DefaultLoanNumberProperties are the deal properties searched by the
// loan-number channel: the primary field plus alternate servicer fields.
var DefaultLoanNumberProperties = []string{
	"loan_number",
	"servicer_loan_number",
	"previous_servicer_loan_number",
}

// DefaultAddressBlacklist filters known address false positives: time-of-day
// mentions, legal boilerplate, and generic numbered-list openers.
var DefaultAddressBlacklist = []string{
	`(?i)^\d{1,2}\s*(?:a\.?m\.?|p\.?m\.?|o'?clock)\b`,
	`(?i)^\d+\s+(?:business\s+)?days?\b`,
	`(?i)^\d+\s+of\s+\d+\b`,
	`(?i)\battorney\s+advertising\b`,
	`(?i)\bterms\s+and\s+conditions\b`,
	`(?i)^\d+\s+u\.?s\.?c\.?\b`,
}

// Config holds all application configuration.
type Config struct {
	CRM      CRMConfig
	Matching MatchingConfig
	Retry    service.RetryOptions
}

// CRMConfig holds connection settings for the external CRM store.
type CRMConfig struct {
	BaseURL           string
	AccessToken       string
	RequestTimeout    time.Duration
	AssociationTypeID int
}

// MatchingConfig holds the tuning knobs for the matching engine.
type MatchingConfig struct {
	AllowedStages        []string
	AcceptanceThreshold  int
	SearchDelay          time.Duration
	LoanNumberProperties []string
	DealNameProperty     string
	AddressProperty      string
	AddressBlacklist     []string
}

// Load reads configuration from viper. Defaults are applied for everything
// except CRM credentials and the allowed stage set, which have no sane
// defaults and must be supplied.
func Load() (*Config, error) {
	viper.SetDefault("crm.timeout", DefaultRequestTimeout)
	viper.SetDefault("crm.association_type_id", DefaultAssociationTypeID)
	viper.SetDefault("matching.acceptance_threshold", DefaultAcceptanceThreshold)
	viper.SetDefault("matching.search_delay", DefaultSearchDelay)
	viper.SetDefault("matching.loan_number_properties", DefaultLoanNumberProperties)
	viper.SetDefault("matching.deal_name_property", "dealname")
	viper.SetDefault("matching.address_property", "property_address")
	viper.SetDefault("matching.address_blacklist", DefaultAddressBlacklist)
	viper.SetDefault("retry.max_retries", DefaultMaxRetries)
	viper.SetDefault("retry.base_delay", DefaultRetryBaseDelay)

	cfg := &Config{
		CRM: CRMConfig{
			BaseURL:           viper.GetString("crm.base_url"),
			AccessToken:       viper.GetString("crm.access_token"),
			RequestTimeout:    viper.GetDuration("crm.timeout"),
			AssociationTypeID: viper.GetInt("crm.association_type_id"),
		},
		Matching: MatchingConfig{
			AllowedStages:        viper.GetStringSlice("matching.allowed_stages"),
			AcceptanceThreshold:  viper.GetInt("matching.acceptance_threshold"),
			SearchDelay:          viper.GetDuration("matching.search_delay"),
			LoanNumberProperties: viper.GetStringSlice("matching.loan_number_properties"),
			DealNameProperty:     viper.GetString("matching.deal_name_property"),
			AddressProperty:      viper.GetString("matching.address_property"),
			AddressBlacklist:     viper.GetStringSlice("matching.address_blacklist"),
		},
		Retry: service.RetryOptions{
			MaxRetries: viper.GetInt("retry.max_retries"),
			BaseDelay:  viper.GetDuration("retry.base_delay"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required fields are present and sensible. A failure
// here aborts the whole invocation before any event is processed.
func (c *Config) Validate() error {
	if c.CRM.BaseURL == "" {
		return fmt.Errorf("%w: crm.base_url is required", common.ErrMissingConfig)
	}
	if c.CRM.AccessToken == "" {
		return fmt.Errorf("%w: crm.access_token is required", common.ErrMissingConfig)
	}
	if len(c.Matching.AllowedStages) == 0 {
		return fmt.Errorf("%w: matching.allowed_stages is required", common.ErrMissingConfig)
	}
	if c.Matching.AcceptanceThreshold < 0 || c.Matching.AcceptanceThreshold > 100 {
		return fmt.Errorf("%w: matching.acceptance_threshold must be between 0 and 100", common.ErrInvalidConfig)
	}
	if len(c.Matching.LoanNumberProperties) == 0 {
		return fmt.Errorf("%w: matching.loan_number_properties is required", common.ErrMissingConfig)
	}
	if c.Matching.DealNameProperty == "" {
		return fmt.Errorf("%w: matching.deal_name_property is required", common.ErrMissingConfig)
	}
	if c.Matching.AddressProperty == "" {
		return fmt.Errorf("%w: matching.address_property is required", common.ErrMissingConfig)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: retry.max_retries cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
