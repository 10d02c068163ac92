// Package security provides authorization and access control.
package security

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"retailcore/internal/core/apperror"
)

// Policy names evaluated by the domain layer.
const (
	// PolicyCancelPurchase guards the cancel operation on purchase entries.
	PolicyCancelPurchase = "cancel_purchase"
)

// DefaultPolicies are the rules applied when a tenant has no overrides.
// Expressions see two variables:
//
//	entry: map with keys status, amount_due, amount_paid, grand_total,
//	       received_any (bool)
//	user:  map with keys role, is_admin
var DefaultPolicies = map[string]string{
	// Cancelling after goods were received is reserved for managers.
	PolicyCancelPurchase: `!entry.received_any || user.is_admin || user.role == 'manager'`,
}

// PolicyEngine evaluates per-tenant CEL rules. Expressions are compiled
// once and cached; evaluation is pure and side-effect free.
type PolicyEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewPolicyEngine creates an engine with the default rule set compiled.
func NewPolicyEngine() (*PolicyEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("entry", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("user", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	e := &PolicyEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}

	for name, expr := range DefaultPolicies {
		if err := e.SetRule(name, expr); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SetRule compiles and installs (or replaces) a rule expression.
// Used at startup for defaults and when a tenant configures overrides.
func (e *PolicyEngine) SetRule(name, expr string) error {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile policy %q: %w", name, issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return fmt.Errorf("build policy %q: %w", name, err)
	}

	e.mu.Lock()
	e.programs[name] = prg
	e.mu.Unlock()
	return nil
}

// Allow evaluates the named rule. A missing rule allows the operation;
// an evaluation error or non-bool result denies it.
func (e *PolicyEngine) Allow(name string, entry, user map[string]any) error {
	e.mu.RLock()
	prg, ok := e.programs[name]
	e.mu.RUnlock()
	if !ok {
		return nil
	}

	out, _, err := prg.Eval(map[string]any{
		"entry": entry,
		"user":  user,
	})
	if err != nil {
		return apperror.NewForbidden("policy evaluation failed").
			WithDetail("policy", name).
			WithCause(err)
	}

	allowed, ok := out.Value().(bool)
	if !ok || !allowed {
		return apperror.NewForbidden("operation not allowed by policy").
			WithDetail("policy", name)
	}
	return nil
}
