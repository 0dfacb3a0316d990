package ai

import (
	"context"
	"errors"
	"time"
)

// ErrInvocation wraps every failure returned by a model invocation.
var ErrInvocation = errors.New("model invocation failed")

// InvocationRequest carries one text-in/text-out model call.
type InvocationRequest struct {
	Model              string
	SystemInstructions string // empty means no system message
	UserText           string
	Temperature        float64
	TopP               float64
	MaxOutputTokens    int
	Timeout            time.Duration
}

// Invoker is the boundary to a language model. Implementations must be safe for concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, req InvocationRequest) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req InvocationRequest) (string, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, req InvocationRequest) (string, error) {
	return f(ctx, req)
}
