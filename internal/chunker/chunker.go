// Package chunker splits case full texts into bounded-size units suitable
// for embedding.
package chunker

import "strings"

const (
	// DefaultMaxChunkSize bounds the size of a unit in characters.
	DefaultMaxChunkSize = 1500
	// DefaultMinChunkSize is the threshold below which a unit is dropped
	// as too short to carry meaningful content.
	DefaultMinChunkSize = 50

	paragraphSeparator = "\n\n"
)

// Options control the chunking bounds.
type Options struct {
	MaxChunkSize int
	MinChunkSize int
}

type Option func(*Options)

// WithMaxChunkSize overrides the maximum unit size.
func WithMaxChunkSize(n int) Option {
	return func(o *Options) { o.MaxChunkSize = n }
}

// WithMinChunkSize overrides the minimum surviving unit size.
func WithMinChunkSize(n int) Option {
	return func(o *Options) { o.MinChunkSize = n }
}

// Chunk splits text into an ordered sequence of content units. Paragraphs
// (blank-line separated) are accumulated into a buffer until the next one
// would push it past the maximum size, at which point the buffer is closed
// out as a unit and a new buffer starts with that paragraph. A single
// paragraph longer than the maximum is emitted whole; the text of a
// paragraph is never split.
//
// Units are deduplicated by exact content, keeping the first occurrence,
// and any unit whose trimmed length does not exceed the minimum size is
// dropped. An empty input yields no units.
func Chunk(text string, opts ...Option) []string {
	o := Options{
		MaxChunkSize: DefaultMaxChunkSize,
		MinChunkSize: DefaultMinChunkSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[string]struct{})
	var units []string
	add := func(unit string) {
		if _, ok := seen[unit]; ok {
			return
		}
		seen[unit] = struct{}{}
		units = append(units, unit)
	}

	var current strings.Builder
	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if current.Len()+len(paragraph) > o.MaxChunkSize {
			if current.Len() > 0 {
				add(strings.TrimSpace(current.String()))
			}
			current.Reset()
			current.WriteString(paragraph)
			continue
		}
		if current.Len() > 0 {
			current.WriteString(paragraphSeparator)
		}
		current.WriteString(paragraph)
	}
	if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
		add(trimmed)
	}

	// removing units that are too short to have any meaningful content
	filtered := units[:0]
	for _, unit := range units {
		if len(strings.TrimSpace(unit)) > o.MinChunkSize {
			filtered = append(filtered, unit)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
