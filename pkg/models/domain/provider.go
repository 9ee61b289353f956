package domain

import "strings"

// ProviderConfig is the raw key/value configuration of one provider as read
// from the configuration source. Variants decode it into typed settings once.
type ProviderConfig map[string]string

func (c ProviderConfig) Clone() ProviderConfig {
	out := make(ProviderConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type ProviderInfo struct {
	Name        string
	DisplayName string
	Configured  bool
}

func NewProviderInfo(name string) ProviderInfo {
	return ProviderInfo{Name: name, DisplayName: strings.ToUpper(name), Configured: true}
}

// ProviderReport is one entry of the cross-provider cost summary.
type ProviderReport struct {
	Provider string
	MTDCost  float64
	Status   Status
	Error    string
}
