package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"household-ledger/internal/models"
	"household-ledger/internal/session"
)

var (
	// ErrNoActiveFlow is returned by Handle when the user is idle.
	ErrNoActiveFlow = errors.New("no active flow")
	// ErrUnknownFlow is returned by Start for unregistered flow names.
	ErrUnknownFlow = errors.New("unknown flow")
)

var cancelTokens = []string{"отмена", "cancel", "стоп", "отменить"}

// IsCancel reports whether input is one of the universal cancel tokens.
func IsCancel(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, t := range cancelTokens {
		if input == t {
			return true
		}
	}
	return false
}

// ParseFunc validates one raw input and returns its canonical form.
type ParseFunc func(input string) (string, error)

// Step collects a single field into Data[Key].
type Step struct {
	Key     string
	Prompt  string
	Options []string
	Parse   ParseFunc
}

// CommitFunc receives the collected fields once every step is answered.
// Returning an InputError or models.ValidationError re-prompts the last step.
type CommitFunc func(ctx context.Context, userID int64, data map[string]string) (any, error)

// Flow is a linear sequence of steps ending in a commit.
type Flow struct {
	Name  string
	Steps []Step
	// Seed is merged into the data of every start and wins over caller seeds.
	Seed   map[string]string
	Commit CommitFunc
}

type Status string

const (
	StatusPrompt    Status = "prompt"
	StatusRetry     Status = "retry"
	StatusCancelled Status = "cancelled"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Outcome is what a turn produced.
type Outcome struct {
	Status  Status
	Flow    string
	Step    string
	Prompt  string
	Options []string
	// Error is the corrective message for StatusRetry.
	Error  string
	Result any
}

// Engine drives one flow per user over an injected session store.
type Engine struct {
	store session.Store
	flows map[string]Flow
	now   func() time.Time

	started   metric.Int64Counter
	completed metric.Int64Counter
	cancelled metric.Int64Counter
}

// NewEngine creates an engine with the given flows registered.
func NewEngine(store session.Store, flows ...Flow) *Engine {
	meter := otel.Meter("household-ledger/conversation")
	e := &Engine{
		store: store,
		flows: make(map[string]Flow, len(flows)),
		now:   time.Now,
	}
	e.started = mustCounter(meter, "conversation.flows.started", "Flows started")
	e.completed = mustCounter(meter, "conversation.flows.completed", "Flows committed")
	e.cancelled = mustCounter(meter, "conversation.flows.cancelled", "Flows cancelled by the user")
	for _, f := range flows {
		e.Register(f)
	}
	return e
}

func mustCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		log.Printf("conversation: counter %s: %v", name, err)
	}
	return c
}

func (e *Engine) count(ctx context.Context, c metric.Int64Counter, flow string) {
	if c != nil {
		c.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
	}
}

// Register adds or replaces a flow.
func (e *Engine) Register(f Flow) {
	e.flows[f.Name] = f
}

// Has reports whether a flow is registered under name.
func (e *Engine) Has(name string) bool {
	_, ok := e.flows[name]
	return ok
}

// Active returns the user's in-progress flow, if any.
func (e *Engine) Active(userID int64) (session.State, bool) {
	return e.store.Get(userID)
}

// Current names the user's active flow and the field it waits for.
func (e *Engine) Current(userID int64) (flow, step string, ok bool) {
	st, ok := e.store.Get(userID)
	if !ok {
		return "", "", false
	}
	f, known := e.flows[st.Flow]
	if !known || st.Step >= len(f.Steps) {
		return st.Flow, "", true
	}
	return st.Flow, f.Steps[st.Step].Key, true
}

// Start begins flow name for userID. Seeded keys skip their steps. Any
// flow the user had open is abandoned.
func (e *Engine) Start(ctx context.Context, userID int64, name string, seed map[string]string) (Outcome, error) {
	flow, ok := e.flows[name]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}
	if prev, ok := e.store.Get(userID); ok {
		log.Printf("conversation: user %d abandoned %s flow %s at step %d", userID, prev.Flow, prev.ID, prev.Step)
	}

	data := make(map[string]string, len(seed)+len(flow.Seed))
	maps.Copy(data, seed)
	maps.Copy(data, flow.Seed)
	st := session.New(name, data, e.now())
	st.Step = skipSeeded(flow, st, 0)
	e.count(ctx, e.started, name)
	log.Printf("conversation: user %d started %s flow %s", userID, name, st.ID)

	if st.Step >= len(flow.Steps) {
		e.store.Delete(userID)
		return e.commit(ctx, userID, flow, st, st)
	}
	e.store.Put(userID, st)
	return prompt(flow, st, StatusPrompt, ""), nil
}

// Cancel drops the user's flow. It reports whether one was active.
func (e *Engine) Cancel(ctx context.Context, userID int64) (string, bool) {
	st, ok := e.store.Get(userID)
	if !ok {
		return "", false
	}
	e.store.Delete(userID)
	e.count(ctx, e.cancelled, st.Flow)
	log.Printf("conversation: user %d cancelled %s flow %s", userID, st.Flow, st.ID)
	return st.Flow, true
}

// Handle feeds one input to the user's active flow.
func (e *Engine) Handle(ctx context.Context, userID int64, input string) (Outcome, error) {
	st, ok := e.store.Get(userID)
	if !ok {
		return Outcome{}, ErrNoActiveFlow
	}
	if IsCancel(input) {
		e.Cancel(ctx, userID)
		return Outcome{Status: StatusCancelled, Flow: st.Flow}, nil
	}
	flow, ok := e.flows[st.Flow]
	if !ok || st.Step >= len(flow.Steps) {
		e.store.Delete(userID)
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownFlow, st.Flow)
	}

	step := flow.Steps[st.Step]
	value, err := step.Parse(strings.TrimSpace(input))
	if err != nil {
		return prompt(flow, st, StatusRetry, inputMessage(err)), nil
	}

	next := st.Clone()
	next.Data[step.Key] = value
	next.Step = skipSeeded(flow, next, st.Step+1)
	if next.Step < len(flow.Steps) {
		e.store.Put(userID, next)
		return prompt(flow, next, StatusPrompt, ""), nil
	}
	return e.commit(ctx, userID, flow, st, next)
}

// commit hands the collected data to the flow. On failure the stored state
// stays at before, so the user can answer the last step again.
func (e *Engine) commit(ctx context.Context, userID int64, flow Flow, before, collected session.State) (Outcome, error) {
	result, err := flow.Commit(ctx, userID, collected.Data)
	if err != nil {
		var inErr InputError
		var verr models.ValidationError
		if errors.As(err, &inErr) || errors.As(err, &verr) {
			if before.Step < len(flow.Steps) {
				return prompt(flow, before, StatusRetry, inputMessage(err)), nil
			}
		}
		log.Printf("conversation: user %d %s flow %s commit error: %v", userID, flow.Name, collected.ID, err)
		out := Outcome{Status: StatusFailed, Flow: flow.Name}
		if before.Step < len(flow.Steps) {
			out = prompt(flow, before, StatusFailed, "")
		}
		return out, err
	}

	e.store.Delete(userID)
	e.count(ctx, e.completed, flow.Name)
	return Outcome{Status: StatusDone, Flow: flow.Name, Result: result}, nil
}

func skipSeeded(flow Flow, st session.State, from int) int {
	i := from
	for i < len(flow.Steps) {
		if _, seeded := st.Data[flow.Steps[i].Key]; !seeded {
			break
		}
		i++
	}
	return i
}

func prompt(flow Flow, st session.State, status Status, errMsg string) Outcome {
	step := flow.Steps[st.Step]
	return Outcome{
		Status:  status,
		Flow:    flow.Name,
		Step:    step.Key,
		Prompt:  step.Prompt,
		Options: step.Options,
		Error:   errMsg,
	}
}
