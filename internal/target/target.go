// Package target resolves remote target kinds to concrete adapters.
package target

import (
	"fmt"
	"sort"
	"time"

	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/target/notion"
	"github.com/freqsync/freqsync/internal/utils"
)

// Kind identifies a supported remote target kind.
type Kind string

// KindNotion is the hosted tabular database adapter.
const KindNotion Kind = "notion"

// Options carries adapter construction settings.
type Options struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Logger     *utils.Logger
}

// Factory constructs an adapter for one kind.
type Factory func(Options) (domain.Target, error)

// The supported kinds are fixed at compile time; adding a target means adding
// a constructor here, not registering strings at runtime.
var factories = map[Kind]Factory{
	KindNotion: func(opts Options) (domain.Target, error) {
		return notion.New(notion.AdapterOptions{
			Token:      opts.Token,
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			Logger:     opts.Logger,
		})
	},
}

// New constructs the adapter for a kind.
func New(kind Kind, opts Options) (domain.Target, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown target kind: %s", kind)
	}
	return factory(opts)
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if _, ok := factories[kind]; !ok {
		return "", fmt.Errorf("unknown target kind: %s", s)
	}
	return kind, nil
}

// Kinds returns the supported kinds in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
