package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"

	"enzo/internal/auth"
)

const regoQuery = "data.enzo.authz.allow"

// RegoPolicy evaluates an OPA policy that defines data.enzo.authz.allow.
// The input document is {"identity": {...}, "allowed_emails": [...]}.
type RegoPolicy struct {
	query         rego.PreparedEvalQuery
	allowedEmails []string
}

// NewRegoPolicyFromFile compiles the policy at path.
func NewRegoPolicyFromFile(ctx context.Context, path string, allowedEmails []string) (*RegoPolicy, error) {
	if path == "" {
		return nil, errors.New("rego policy path is required")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rego policy: %w", err)
	}
	return NewRegoPolicy(ctx, filepath.Base(path), string(src), allowedEmails)
}

// NewRegoPolicy compiles module source.
func NewRegoPolicy(ctx context.Context, filename, module string, allowedEmails []string) (*RegoPolicy, error) {
	prepared, err := rego.New(
		rego.Query(regoQuery),
		rego.Module(filename, module),
		rego.StrictBuiltinErrors(true),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rego policy: %w", err)
	}

	emails := make([]string, 0, len(allowedEmails))
	for _, e := range allowedEmails {
		if e = normalizeEmail(e); e != "" {
			emails = append(emails, e)
		}
	}

	return &RegoPolicy{query: prepared, allowedEmails: emails}, nil
}

func (p *RegoPolicy) Authorize(ctx context.Context, identity auth.Identity) Decision {
	input := map[string]any{
		"identity": map[string]any{
			"subject_id":     identity.SubjectID,
			"email":          normalizeEmail(identity.Email),
			"email_verified": identity.EmailVerified,
			"role":           identity.Role,
		},
		"allowed_emails": p.allowedEmails,
	}

	results, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		slog.ErrorContext(ctx, "rego policy evaluation failed", slog.Any("error", err))
		return Deny()
	}
	if results.Allowed() {
		return Allow()
	}
	return Deny()
}
