package anthropic

import (
	"context"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
)

type fakeMessages struct {
	params []sdk.MessageNewParams
	resp   *sdk.Message
	err    error
}

func (f *fakeMessages) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	f.params = append(f.params, body)
	return f.resp, f.err
}

func TestClientComplete(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "{\"questions\": "},
			{Type: "text", Text: "[]}"},
		},
	}}
	c := newClient(fake, "", 0, zap.NewNop())

	out, err := c.Complete(context.Background(), ai.Request{Prompt: "generate", MaxOutputTokens: 1500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{\"questions\": []}" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(fake.params) != 1 {
		t.Fatalf("expected single request, got %d", len(fake.params))
	}
	if fake.params[0].MaxTokens != 1500 {
		t.Fatalf("expected max tokens 1500, got %d", fake.params[0].MaxTokens)
	}
	if string(fake.params[0].Model) != defaultModel {
		t.Fatalf("expected default model, got %q", fake.params[0].Model)
	}
}

func TestClientDefaultMaxTokens(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{Content: []sdk.ContentBlockUnion{{Type: "text", Text: "ok"}}}}
	c := newClient(fake, "claude-test", 0, zap.NewNop())

	if _, err := c.Complete(context.Background(), ai.Request{Prompt: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.params[0].MaxTokens != defaultMaxTokens {
		t.Fatalf("expected default max tokens, got %d", fake.params[0].MaxTokens)
	}
}

func TestClientErrorsAreTransport(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeMessages
	}{
		{name: "network", fake: &fakeMessages{err: errors.New("dial tcp: connection refused")}},
		{name: "empty content", fake: &fakeMessages{resp: &sdk.Message{}}},
		{name: "non text blocks", fake: &fakeMessages{resp: &sdk.Message{Content: []sdk.ContentBlockUnion{{Type: "thinking"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.fake, "claude-test", 0, zap.NewNop())
			_, err := c.Complete(context.Background(), ai.Request{Prompt: "p"})
			if !ai.IsTransport(err) {
				t.Fatalf("expected transport error, got %v", err)
			}
		})
	}
}

func TestClientMaxTokensStopIsTruncation(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{
		StopReason: sdk.StopReasonMaxTokens,
		Content:    []sdk.ContentBlockUnion{{Type: "text", Text: "JANE DOE\n- Led migration of the payments pla"}},
	}}
	c := newClient(fake, "claude-test", 0, zap.NewNop())

	out, err := c.Complete(context.Background(), ai.Request{Prompt: "rewrite", MaxOutputTokens: 2000})
	if out != "" {
		t.Fatalf("truncated text must not be returned, got %q", out)
	}

	var te *ai.TransportError
	if !errors.As(err, &te) || !errors.Is(err, ai.ErrTruncated) {
		t.Fatalf("expected truncation transport error, got %v", err)
	}
	if te.Temporary() {
		t.Fatal("truncation must not be retried as temporary")
	}
}
