package engine

import (
	"github.com/transitdata/netex-validator/progress"
	"github.com/transitdata/netex-validator/types"
)

// Options controls one Validate/ValidateDocuments call. All fields are
// optional; the zero value runs format auto-detection with the format's
// default profile.
type Options struct {
	Format           types.Format // "" means auto-detect
	Profile          string       // "" means the format's default profile
	SchemaID         string       // overrides the profile's schema id
	CustomSchemaPath string       // used when Profile/SchemaID select "custom"
	Rules            []string     // overrides the profile's enabled-rule list
	RuleConfig       map[string]interface{}
	SkipXSD          bool
	SkipRules        bool
	// Concurrent opts into fanning the per-document phase out across a
	// worker pool. It defaults to false: per §5's ordering guarantee, the
	// per-document phase runs one document at a time, in caller order, with
	// OnProgress invoked synchronously from the same goroutine that calls
	// ValidateDocuments, so a caller can rely on progress events arriving in
	// file order without locking.
	Concurrent bool
	OnProgress progress.Callback
}

func (o Options) notify(ev progress.Event) {
	if o.OnProgress != nil {
		o.OnProgress(ev)
	}
}
