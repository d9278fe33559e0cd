package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// scriptedClient replies with canned text, one reply per call.
type scriptedClient struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if s.calls >= len(s.replies) {
		return openai.ChatCompletionResponse{}, errors.New("no scripted reply left")
	}
	reply := s.replies[s.calls]
	s.calls++
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func scripted(replies ...string) *Client {
	return &Client{api: &scriptedClient{replies: replies}, model: "test-model", log: zap.NewNop()}
}

func TestExtractJSONHandlesFencesAndProse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", `Sure, here is the plan: {"a": 1} hope that helps`, `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.in)
			if err != nil {
				t.Fatalf("extractJSON: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("extractJSON = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExtractJSONRejectsNonJSON(t *testing.T) {
	for _, in := range []string{"no object here", `{"broken":`} {
		if _, err := extractJSON(in); !errors.Is(err, ErrUnclassified) {
			t.Errorf("extractJSON(%q) err = %v, want ErrUnclassified", in, err)
		}
	}
}

func TestClassifyNotRacing(t *testing.T) {
	c := scripted("no")
	label, err := c.Classify(context.Background(), "what is the capital of France")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if label != LabelNotRacing {
		t.Errorf("label = %q, want not_racing", label)
	}
}

func TestClassifySimpleAndComplex(t *testing.T) {
	c := scripted("yes", `{"next_node": "simple", "reasoning": "single lookup"}`)
	label, err := c.Classify(context.Background(), "who runs at Ascot today")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if label != LabelSimple {
		t.Errorf("label = %q, want simple", label)
	}

	c = scripted("Yes.", "```json\n{\"next_node\": \"complex\", \"reasoning\": \"needs analysis\"}\n```")
	label, err = c.Classify(context.Background(), "compare Jonbon and Shishkin over two miles")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if label != LabelComplex {
		t.Errorf("label = %q, want complex", label)
	}
}

func TestClassifyMalformedReplies(t *testing.T) {
	// Validation reply outside yes/no.
	c := scripted("maybe")
	if _, err := c.Classify(context.Background(), "odd question"); !errors.Is(err, ErrUnclassified) {
		t.Errorf("err = %v, want ErrUnclassified", err)
	}

	// Classifier emits an unknown route.
	c = scripted("yes", `{"next_node": "medium"}`)
	if _, err := c.Classify(context.Background(), "odd question"); !errors.Is(err, ErrUnclassified) {
		t.Errorf("err = %v, want ErrUnclassified", err)
	}
}

func TestClassifyPropagatesTransportError(t *testing.T) {
	c := &Client{api: &scriptedClient{err: errors.New("connection refused")}, model: "test-model", log: zap.NewNop()}
	_, err := c.Classify(context.Background(), "who won")
	if err == nil || errors.Is(err, ErrUnclassified) {
		t.Errorf("err = %v, want a transport error", err)
	}
}

func TestPlanExtractsFilterDocument(t *testing.T) {
	c := scripted("Here you go:\n```json\n{\"filters\": {\"Race\": {\"going\": \"Soft\"}}}\n```")
	raw, err := c.Plan(context.Background(), "soft ground races", "{}")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if string(raw) != `{"filters": {"Race": {"going": "Soft"}}}` {
		t.Errorf("plan = %s", raw)
	}
}
