package markets

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// MarketConfig is one routing target: a catalog view/price book paired with a
// feed account and a storefront URL pattern.
type MarketConfig struct {
	ID    string      `mapstructure:"id" json:"id"`
	ACO   ACOConfig   `mapstructure:"aco" json:"aco"`
	Feed  FeedConfig  `mapstructure:"feed" json:"feed"`
	Store StoreConfig `mapstructure:"store" json:"store"`
}

type ACOConfig struct {
	ViewID      string       `mapstructure:"viewId" json:"viewId"`
	PriceBookID string       `mapstructure:"priceBookId" json:"priceBookId"`
	Source      SourceConfig `mapstructure:"source" json:"source"`
}

type SourceConfig struct {
	Locale string `mapstructure:"locale" json:"locale"`
}

type FeedConfig struct {
	MerchantID      string `mapstructure:"merchantId" json:"merchantId"`
	DataSourceID    string `mapstructure:"dataSourceId" json:"dataSourceId"`
	FeedLabel       string `mapstructure:"feedLabel" json:"feedLabel"`
	ContentLanguage string `mapstructure:"contentLanguage" json:"contentLanguage"`
	TargetCountry   string `mapstructure:"targetCountry" json:"targetCountry"`
}

type StoreConfig struct {
	URLTemplate string `mapstructure:"urlTemplate" json:"urlTemplate"`
}

// Registry holds the configured markets and the derived locale index.
// Built once at startup and read-only afterwards.
type Registry struct {
	markets  []MarketConfig
	byLocale map[string][]*MarketConfig
}

// NewRegistry builds a registry from an already-parsed market list.
// Market ids must be unique; locales may repeat (multi-currency setups).
func NewRegistry(configs []MarketConfig) (*Registry, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no markets configured")
	}

	seen := make(map[string]bool, len(configs))
	byLocale := make(map[string][]*MarketConfig)
	for i := range configs {
		m := &configs[i]
		if m.ID == "" {
			return nil, fmt.Errorf("market at index %d has no id", i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate market id %q", m.ID)
		}
		seen[m.ID] = true

		locale := strings.ToLower(m.ACO.Source.Locale)
		if locale == "" {
			return nil, fmt.Errorf("market %q has no source locale", m.ID)
		}
		byLocale[locale] = append(byLocale[locale], m)
	}

	return &Registry{markets: configs, byLocale: byLocale}, nil
}

// Load reads the market configuration file and builds the registry.
func Load(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read markets config: %w", err)
	}

	var file struct {
		Markets []MarketConfig `mapstructure:"markets"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse markets config: %w", err)
	}

	return NewRegistry(file.Markets)
}

// Markets returns all configured markets.
func (r *Registry) Markets() []MarketConfig {
	return r.markets
}

// ByLocale returns the markets sharing the given locale (case-insensitive).
func (r *Registry) ByLocale(locale string) []*MarketConfig {
	return r.byLocale[strings.ToLower(locale)]
}
