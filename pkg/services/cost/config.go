package cost

import (
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/go-viper/mapstructure/v2"
)

// DecodeConfig decodes raw provider settings into out, a pointer to a
// mapstructure-tagged struct pre-filled with defaults. Empty values keep the
// default. Strings are weakly converted, so "true" fills a bool.
func DecodeConfig(provider string, raw domain.ProviderConfig, out any) error {
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v != "" {
			values[k] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return &domain.ConfigurationError{Provider: provider, Err: err}
	}

	if err := decoder.Decode(values); err != nil {
		return &domain.ConfigurationError{Provider: provider, Reason: "cannot decode settings", Err: err}
	}
	return nil
}
