package commands

import (
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
)

// render prints an active result with show and a soft failure with the
// reporter's failure line. Soft failures are not command errors.
func render[T any](reporter *export.Reporter, provider string, res domain.Result[T], show func(T) error) error {
	if !res.OK() {
		return reporter.Failure(provider, res.Status, res.Kind, res.Message)
	}
	return show(res.Value)
}
