package registry

import (
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/aws"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/azure"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/databricks"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/gcp"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/hetzner"
	"github.com/de-tools/cloud-atlas/pkg/services/cost/snowflake"
)

// KnownProviders lists every built-in provider identifier in the order
// env-only providers are enumerated.
var KnownProviders = []string{
	gcp.Name,
	aws.Name,
	azure.Name,
	hetzner.Name,
	databricks.Name,
	snowflake.Name,
}

var factories = map[string]cost.Factory{
	gcp.Name:        gcp.Factory,
	aws.Name:        aws.Factory,
	azure.Name:      azure.Factory,
	hetzner.Name:    hetzner.Factory,
	databricks.Name: databricks.Factory,
	snowflake.Name:  snowflake.Factory,
}

// NewDefaultRegistry returns a registry with every built-in provider.
func NewDefaultRegistry() cost.Registry {
	r := cost.NewRegistry()
	for _, name := range KnownProviders {
		if err := r.Register(name, factories[name]); err != nil {
			// names above are unique and non-empty
			panic(err)
		}
	}
	return r
}
