package queryengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/llm"
	"github.com/conorwd/raceql/retry"
)

// Canned replies for the paths where no data-backed answer exists. The
// chat surface never sees a raw error.
const (
	msgNotRacing   = "I can only help with horse racing questions. Ask me about races, horses, jockeys, trainers or odds."
	msgAmbiguous   = "I'm not sure what racing data you're after. Could you rephrase the question?"
	msgUnavailable = "I couldn't fetch the data for that just now. Please try again in a moment."
	msgNoData      = "I don't have any information available for your query at this time. Please try a different query or check back later."
)

// Model is the slice of the llm client the answer path needs.
type Model interface {
	Classify(ctx context.Context, query string) (llm.Label, error)
	Plan(ctx context.Context, query, schemaContext string) (json.RawMessage, error)
	Render(ctx context.Context, query, content string) (string, error)
	AnalysisPlan(ctx context.Context, query, schemaContext string) (json.RawMessage, error)
	Analyze(ctx context.Context, query, plan, data string) (string, error)
}

// AnswerCache short-circuits repeated queries. Implementations degrade to
// a miss when their backend is away; nil disables caching entirely.
type AnswerCache interface {
	GetAnswer(ctx context.Context, query string) (string, bool)
	PutAnswer(ctx context.Context, query, answer string)
	GetPlan(ctx context.Context, query string) (json.RawMessage, bool)
	PutPlan(ctx context.Context, query string, plan json.RawMessage)
	SetCooldown(ctx context.Context, query string)
	InCooldown(ctx context.Context, query string) bool
}

// Answerer routes a chat query through classification and the matching
// execution path.
type Answerer struct {
	model   Model
	exec    *Executor
	cache   AnswerCache
	log     *zap.Logger
	collect retry.Policy
}

// NewAnswerer wires the answer path. cache may be nil.
func NewAnswerer(model Model, exec *Executor, cache AnswerCache, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{
		model:   model,
		exec:    exec,
		cache:   cache,
		log:     log,
		collect: retry.Policy{MaxAttempts: 3, Backoff: retry.Exponential(time.Second)},
	}
}

// Answer produces the reply for one query. Whatever goes wrong inside,
// the caller gets a user-safe string.
func (a *Answerer) Answer(ctx context.Context, query string) string {
	if a.cache != nil {
		if ans, ok := a.cache.GetAnswer(ctx, query); ok {
			return ans
		}
		if a.cache.InCooldown(ctx, query) {
			return msgUnavailable
		}
	}

	label, err := a.model.Classify(ctx, query)
	if err != nil {
		if errors.Is(err, llm.ErrUnclassified) {
			return msgAmbiguous
		}
		a.log.Error("classification failed", zap.Error(err))
		if a.cache != nil {
			a.cache.SetCooldown(ctx, query)
		}
		return msgUnavailable
	}

	var answer string
	switch label {
	case llm.LabelNotRacing:
		return msgNotRacing
	case llm.LabelSimple:
		answer = a.answerSimple(ctx, query)
	case llm.LabelComplex:
		answer = a.answerComplex(ctx, query)
	default:
		return msgAmbiguous
	}

	if a.cache != nil {
		if answer == msgUnavailable {
			a.cache.SetCooldown(ctx, query)
		} else {
			a.cache.PutAnswer(ctx, query, answer)
		}
	}
	return answer
}

func (a *Answerer) answerSimple(ctx context.Context, query string) string {
	var raw json.RawMessage
	if a.cache != nil {
		if p, ok := a.cache.GetPlan(ctx, query); ok {
			raw = p
		}
	}
	if raw == nil {
		var err error
		raw, err = a.model.Plan(ctx, query, SchemaContext())
		if err != nil {
			if errors.Is(err, llm.ErrUnclassified) {
				return msgAmbiguous
			}
			a.log.Error("planning failed", zap.Error(err))
			return msgUnavailable
		}
		if a.cache != nil {
			a.cache.PutPlan(ctx, query, raw)
		}
	}

	plan, err := DecodePlan(raw)
	if err != nil {
		a.log.Warn("plan undecodable", zap.Error(err))
		return msgAmbiguous
	}

	result := a.exec.Execute(ctx, plan)
	reduced := Reduce(result)
	if len(reduced) == 0 {
		return msgNoData
	}

	content, err := json.Marshal(reduced)
	if err != nil {
		a.log.Error("result marshal failed", zap.Error(err))
		return msgUnavailable
	}
	text, err := a.model.Render(ctx, query, string(content))
	if err != nil {
		a.log.Error("render failed", zap.Error(err))
		return msgUnavailable
	}
	return text
}

type analysisStep struct {
	Description  string     `json:"description"`
	RequiredData []stepData `json:"required_data"`
}

type stepData struct {
	Table   string                     `json:"table"`
	Filters map[string]json.RawMessage `json:"filters"`
}

// answerComplex breaks the query into analysis steps, collects the data
// each step asks for with bounded retries, and has the model synthesize
// insights before rendering.
func (a *Answerer) answerComplex(ctx context.Context, query string) string {
	rawPlan, err := a.model.AnalysisPlan(ctx, query, SchemaContext())
	if err != nil {
		if errors.Is(err, llm.ErrUnclassified) {
			return msgAmbiguous
		}
		a.log.Error("analysis planning failed", zap.Error(err))
		return msgUnavailable
	}

	var plan struct {
		Steps []analysisStep `json:"analysis_steps"`
	}
	if err := json.Unmarshal(rawPlan, &plan); err != nil || len(plan.Steps) == 0 {
		a.log.Warn("analysis plan undecodable", zap.Error(err))
		return msgAmbiguous
	}

	collected := make(map[string]any, len(plan.Steps))
	for i, step := range plan.Steps {
		stepResult := make(map[string]any)
		for _, req := range step.RequiredData {
			filter := TableFilter{Conditions: make(map[string]Condition)}
			for field, rawCond := range req.Filters {
				cond, err := parseCondition(rawCond)
				if err != nil {
					continue
				}
				filter.Conditions[field] = cond
			}

			var rows []map[string]any
			err := a.collect.Do(ctx, func() error {
				var qerr error
				rows, qerr = a.exec.QueryTable(ctx, req.Table, filter)
				return qerr
			})
			if err != nil {
				stepResult[req.Table] = errEntry(err.Error())
				continue
			}
			stepResult[req.Table] = rows
		}
		collected[fmt.Sprintf("step_%d", i+1)] = stepResult
	}

	data, err := json.Marshal(collected)
	if err != nil {
		a.log.Error("collected data marshal failed", zap.Error(err))
		return msgUnavailable
	}

	var insights string
	err = a.collect.Do(ctx, func() error {
		var aerr error
		insights, aerr = a.model.Analyze(ctx, query, string(rawPlan), string(data))
		return aerr
	})
	if err != nil {
		a.log.Error("analysis execution failed", zap.Error(err))
		return msgUnavailable
	}

	text, err := a.model.Render(ctx, query, insights)
	if err != nil {
		a.log.Error("render failed", zap.Error(err))
		return msgUnavailable
	}
	return text
}
