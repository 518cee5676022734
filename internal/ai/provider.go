package ai

import "context"

type Turn struct {
	Role  Role
	Text  string
	Blobs []Blob
}

type Request struct {
	Profile Profile
	System  string
	Turns   []Turn
}

type Response struct {
	Text    string
	Sources []Source
	Blobs   []Blob
}

// Provider is a hosted model API. Implementations must be safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// dedupeSources drops entries without a URI and repeated URIs, keeping first-seen order.
func dedupeSources(in []Source) []Source {
	out := make([]Source, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s.URI == "" {
			continue
		}
		if _, ok := seen[s.URI]; ok {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	return out
}
