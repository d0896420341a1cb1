// Package tools holds the named operation registry and the dispatch pipeline
// that composes rate limiting, schema validation, and error normalization
// around every call.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darkclone9/portfolio-server/internal/apperr"
	"github.com/darkclone9/portfolio-server/internal/ratelimit"
	"github.com/darkclone9/portfolio-server/internal/schema"
	"github.com/darkclone9/portfolio-server/pkg/models"
)

// Handler executes a validated tool call. Arguments have passed schema
// validation and carry declared defaults.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Descriptor describes one registered operation. Immutable after Register.
type Descriptor struct {
	Schema      *schema.ObjectSchema
	Handler     Handler
	Name        string
	Description string
}

// CallerInfo identifies the caller for rate limiting and analytics.
type CallerInfo struct {
	IP        string
	UserAgent string
}

type callerKeyType struct{}

// WithCaller stores the caller identity in the context for handlers that
// record analytics.
func WithCaller(ctx context.Context, caller CallerInfo) context.Context {
	return context.WithValue(ctx, callerKeyType{}, caller)
}

// CallerFromContext returns the caller identity stored by the dispatcher.
func CallerFromContext(ctx context.Context) CallerInfo {
	if caller, ok := ctx.Value(callerKeyType{}).(CallerInfo); ok {
		return caller
	}
	return CallerInfo{}
}

// ToolInfo is the discovery view of a descriptor.
type ToolInfo struct {
	InputSchema map[string]any `json:"inputSchema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

// Registry holds the operation set and executes named calls end-to-end.
type Registry struct {
	limiter *ratelimit.Limiter
	tools   map[string]*Descriptor
	timeout time.Duration
	mu      sync.RWMutex
}

// NewRegistry creates a registry guarded by the given rate limiter. A
// non-zero timeout caps each handler's execution time.
func NewRegistry(limiter *ratelimit.Limiter, timeout time.Duration) *Registry {
	return &Registry{
		limiter: limiter,
		timeout: timeout,
		tools:   make(map[string]*Descriptor),
	}
}

// Register adds a descriptor. Names are unique within the registry.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("descriptor requires a name")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %s has no handler", d.Name)
	}
	if d.Schema == nil {
		d.Schema = &schema.ObjectSchema{Properties: map[string]schema.Schema{}}
	}

	// Required names must reference declared properties.
	for _, req := range d.Schema.Required {
		if _, ok := d.Schema.Properties[req]; !ok {
			return fmt.Errorf("tool %s: required property %q is not declared", d.Name, req)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return apperr.New(apperr.CodeDuplicate, "duplicate tool name: "+d.Name)
	}
	r.tools[d.Name] = d
	return nil
}

// List enumerates registered tools in stable name order.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		d := r.tools[name]
		out = append(out, ToolInfo{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: schema.Describe(d.Schema),
		})
	}
	return out
}

// Dispatch executes a named call: lookup, rate gate, validation, handler,
// then envelope construction. Every failure is normalized through the error
// taxonomy; internal details never reach the caller.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any, caller CallerInfo) *models.ResponseEnvelope {
	r.mu.RLock()
	descriptor, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return errorEnvelope(apperr.UnknownTool(name))
	}

	decision := r.limiter.Check(ratelimit.DeriveKey(caller.IP, caller.UserAgent))
	if !decision.Allowed {
		return errorEnvelope(apperr.RateLimited(decision.ResetSeconds))
	}

	if args == nil {
		args = map[string]any{}
	}
	result := schema.Validate(descriptor.Schema, args)
	if !result.Valid {
		return errorEnvelope(apperr.Validation("Invalid parameters: "+joinErrors(result.Errors), result.Errors))
	}
	validated, _ := result.Value.(map[string]any)

	// Side effects inside handlers happen only past this point, never
	// before validation.
	data, err := r.invoke(ctx, descriptor, validated, caller)
	if err != nil {
		appErr := apperr.Normalize(err)
		log.Error().
			Str("tool", name).
			Str("code", appErr.Code).
			Fields(appErr.Context).
			Err(err).
			Msg("Tool call failed")
		return errorEnvelope(appErr)
	}

	return models.SuccessEnvelope(data, "")
}

// invoke runs the handler with panic recovery and the optional timeout.
func (r *Registry) invoke(ctx context.Context, d *Descriptor, args map[string]any, caller CallerInfo) (data any, err error) {
	ctx = WithCaller(ctx, caller)

	if r.timeout <= 0 {
		defer func() {
			if rec := recover(); rec != nil {
				err = apperr.Internal(fmt.Errorf("panic in tool %s: %v", d.Name, rec))
			}
		}()
		return d.Handler(ctx, args)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		data any
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: apperr.Internal(fmt.Errorf("panic in tool %s: %v", d.Name, rec))}
			}
		}()
		data, err := d.Handler(ctx, args)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-ctx.Done():
		return nil, apperr.Timeout(d.Name)
	}
}

func errorEnvelope(err *apperr.Error) *models.ResponseEnvelope {
	return models.ErrorEnvelope(err.Message, err.Code)
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}
