package api

import (
	"consensor/internal/exports"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Exports exports.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Exports: exports.New(
			runtime.Upstream,
			runtime.Scratch,
			runtime.Consensus,
			runtime.Logger,
		),
	}
}
