package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
)

type fakeResponses struct {
	params []responses.ResponseNewParams
	resp   *responses.Response
	err    error
}

func (f *fakeResponses) New(_ context.Context, body responses.ResponseNewParams, _ ...option.RequestOption) (*responses.Response, error) {
	f.params = append(f.params, body)
	return f.resp, f.err
}

func TestClientForwardsRequest(t *testing.T) {
	fake := &fakeResponses{err: errors.New("connection reset by peer")}
	c := newClient(fake, "gpt-test", 0, zap.NewNop())

	_, err := c.Complete(context.Background(), ai.Request{Prompt: " feedback please ", MaxOutputTokens: 2000})

	var te *ai.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.Provider != ai.ProviderOpenAI {
		t.Fatalf("unexpected provider %q", te.Provider)
	}

	if len(fake.params) != 1 {
		t.Fatalf("expected single request, got %d", len(fake.params))
	}
	params := fake.params[0]
	if params.Model != "gpt-test" {
		t.Fatalf("unexpected model %q", params.Model)
	}
	if !params.MaxOutputTokens.Valid() || params.MaxOutputTokens.Value != 2000 {
		t.Fatalf("expected max output tokens 2000, got %+v", params.MaxOutputTokens)
	}
	if params.Input.OfString.Value != "feedback please" {
		t.Fatalf("unexpected prompt %q", params.Input.OfString.Value)
	}
}

func TestClientEmptyOutputIsTransport(t *testing.T) {
	fake := &fakeResponses{resp: &responses.Response{}}
	c := newClient(fake, "", 0, zap.NewNop())

	if c.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", c.Model())
	}

	_, err := c.Complete(context.Background(), ai.Request{Prompt: "p"})
	if !ai.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClientIncompleteResponse(t *testing.T) {
	tests := []struct {
		name      string
		reason    string
		truncated bool
	}{
		{name: "max output tokens", reason: "max_output_tokens", truncated: true},
		{name: "no reason", reason: "", truncated: true},
		{name: "content filter", reason: "content_filter", truncated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &responses.Response{Status: "incomplete"}
			resp.IncompleteDetails.Reason = tt.reason
			c := newClient(&fakeResponses{resp: resp}, "gpt-test", 0, zap.NewNop())

			out, err := c.Complete(context.Background(), ai.Request{Prompt: "rewrite", MaxOutputTokens: 2000})
			if out != "" {
				t.Fatalf("incomplete text must not be returned, got %q", out)
			}
			if !ai.IsTransport(err) {
				t.Fatalf("expected transport error, got %v", err)
			}
			if got := errors.Is(err, ai.ErrTruncated); got != tt.truncated {
				t.Fatalf("expected truncated=%v, got %v (%v)", tt.truncated, got, err)
			}
		})
	}
}
