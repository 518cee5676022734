package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider connects to the Gemini API with an API key.
func NewGeminiProvider(ctx context.Context, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, t := range req.Turns {
		contents = append(contents, toContent(t))
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Profile.Model, contents, buildConfig(req))
	if err != nil {
		return nil, err
	}
	return fromResponse(resp)
}

func toContent(t Turn) *genai.Content {
	parts := make([]*genai.Part, 0, len(t.Blobs)+1)
	for _, b := range t.Blobs {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: b.MIMEType, Data: b.Data}})
	}
	if t.Text != "" {
		parts = append(parts, &genai.Part{Text: t.Text})
	}
	return &genai.Content{Role: string(t.Role), Parts: parts}
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	pr := req.Profile

	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if pr.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: pr.ThinkingBudget}
	}
	if pr.JSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = pr.Schema
	}
	if pr.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if pr.Image {
		cfg.ResponseModalities = []string{"IMAGE", "TEXT"}
	}
	return cfg
}

func fromResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	cand := resp.Candidates[0]

	out := &Response{}
	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.InlineData != nil {
				out.Blobs = append(out.Blobs, Blob{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data})
			}
			sb.WriteString(part.Text)
		}
		out.Text = sb.String()
	}

	if gm := cand.GroundingMetadata; gm != nil {
		sources := make([]Source, 0, len(gm.GroundingChunks))
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
		out.Sources = dedupeSources(sources)
	}
	return out, nil
}
