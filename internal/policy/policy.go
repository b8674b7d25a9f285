// Package policy decides whether a verified identity may use the API.
package policy

import (
	"context"
	"fmt"
	"strings"

	"enzo/internal/auth"
	"enzo/internal/user"
)

// ReasonForbiddenUser is the reason attached to every denial.
const ReasonForbiddenUser = "FORBIDDEN_USER"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with ReasonForbiddenUser.
func Deny() Decision {
	return Decision{Reason: ReasonForbiddenUser}
}

// Policy authorizes a verified identity. It never fails for a well-formed
// Identity; problems evaluating the policy produce a denial.
type Policy interface {
	Authorize(ctx context.Context, identity auth.Identity) Decision
}

// AllowlistPolicy admits identities whose verified email is on the list.
// Comparison ignores case and surrounding whitespace.
type AllowlistPolicy struct {
	emails map[string]struct{}
}

// NewAllowlistPolicy creates an AllowlistPolicy.
func NewAllowlistPolicy(emails ...string) *AllowlistPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &AllowlistPolicy{emails: set}
}

func (p *AllowlistPolicy) Authorize(_ context.Context, identity auth.Identity) Decision {
	email := normalizeEmail(identity.Email)
	if email == "" || !identity.EmailVerified {
		return Deny()
	}
	if _, ok := p.emails[email]; ok {
		return Allow()
	}
	return Deny()
}

// OwnershipPolicy admits every verified subject. Data access stays scoped
// to the caller's own folders and words downstream.
type OwnershipPolicy struct{}

func (OwnershipPolicy) Authorize(_ context.Context, identity auth.Identity) Decision {
	if identity.SubjectID == "" {
		return Deny()
	}
	return Allow()
}

// RolePolicy admits identities holding one of the allowed roles.
// An identity without a role claim is treated as user.RoleUser.
type RolePolicy struct {
	roles map[string]struct{}
}

// NewRolePolicy creates a RolePolicy.
func NewRolePolicy(roles ...string) *RolePolicy {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			set[r] = struct{}{}
		}
	}
	return &RolePolicy{roles: set}
}

func (p *RolePolicy) Authorize(_ context.Context, identity auth.Identity) Decision {
	role := strings.ToLower(strings.TrimSpace(identity.Role))
	if role == "" {
		role = user.RoleUser
	}
	if _, ok := p.roles[role]; ok {
		return Allow()
	}
	return Deny()
}

// Options selects and configures a policy.
type Options struct {
	Kind           string
	AllowedEmails  []string
	AllowedRoles   []string
	RegoPolicyPath string
}

// New builds the policy named by opts.Kind.
func New(ctx context.Context, opts Options) (Policy, error) {
	switch strings.ToLower(opts.Kind) {
	case "", "allowlist":
		return NewAllowlistPolicy(opts.AllowedEmails...), nil
	case "ownership":
		return OwnershipPolicy{}, nil
	case "role":
		return NewRolePolicy(opts.AllowedRoles...), nil
	case "rego":
		return NewRegoPolicyFromFile(ctx, opts.RegoPolicyPath, opts.AllowedEmails)
	default:
		return nil, fmt.Errorf("unknown policy %q", opts.Kind)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
