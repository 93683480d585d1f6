package mapping

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the static bidirectional attribute mapping table, authored from
// the destination's point of view: destination field name -> source attribute
// name, and per field, destination enum value -> source value string.
type Config struct {
	FieldMappings map[string]string            `mapstructure:"fieldMappings" json:"fieldMappings"`
	ValueMappings map[string]map[string]string `mapstructure:"valueMappings" json:"valueMappings"`
}

// Resolver provides the four lookup directions over a loaded Config.
// Forward lookups are index hits; reverse lookups scan the small fixed-size
// table.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) (*Resolver, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// Load reads the attribute mapping configuration file.
func Load(path string) (*Resolver, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read mapping config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mapping config: %w", err)
	}

	return NewResolver(cfg)
}

// validate rejects duplicate source values within one field's value map.
// The reverse lookup assumes a one-to-one correspondence; a duplicate would
// make it pick an arbitrary entry.
func validate(cfg Config) error {
	for field, values := range cfg.ValueMappings {
		seen := make(map[string]string, len(values))
		for dest, source := range values {
			if prev, ok := seen[source]; ok {
				return fmt.Errorf("value mapping for field %q maps both %q and %q to source value %q", field, prev, dest, source)
			}
			seen[source] = dest
		}
	}
	return nil
}

// FieldNameToDestination translates a source attribute name into the
// destination field name. Unmapped names pass through unchanged.
func (r *Resolver) FieldNameToDestination(sourceAttr string) string {
	for dest, source := range r.cfg.FieldMappings {
		if source == sourceAttr {
			return dest
		}
	}
	return sourceAttr
}

// FieldNameToSource translates a destination field name into the source
// attribute name. Unmapped fields pass through unchanged.
func (r *Resolver) FieldNameToSource(destField string) string {
	if source, ok := r.cfg.FieldMappings[destField]; ok {
		return source
	}
	return destField
}

// ValueToDestination translates a source attribute value into the destination
// enum value for the given field. Without a mapping entry the source value is
// lowercased, matching the destination's lowercase enum convention.
func (r *Resolver) ValueToDestination(sourceValue, destField string) string {
	if values, ok := r.cfg.ValueMappings[destField]; ok {
		for dest, source := range values {
			if source == sourceValue {
				return dest
			}
		}
	}
	return strings.ToLower(sourceValue)
}

// ValueToSource translates a destination enum value into the source value for
// the given field. Unmapped values pass through unchanged.
func (r *Resolver) ValueToSource(destValue, destField string) string {
	if values, ok := r.cfg.ValueMappings[destField]; ok {
		if source, ok := values[destValue]; ok {
			return source
		}
	}
	return destValue
}
