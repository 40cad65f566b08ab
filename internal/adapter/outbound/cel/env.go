package cel

import (
	"path/filepath"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// NewAccessEnvironment creates the CEL environment page access rules are
// compiled in. Variables:
//   - role: the short role, "MEMBER", "TRAINER", "ADMIN" or ""
//   - page: the page being opened, e.g. "dashboard"
//   - user_id: the logged-in user's id, "" when unknown
//   - authenticated: whether a token is held
//
// Functions: glob(pattern, name) plus the CEL strings and sets extensions.
func NewAccessEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Sets(),

		cel.Variable("role", cel.StringType),
		cel.Variable("page", cel.StringType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("authenticated", cel.BoolType),

		cel.Function("glob",
			cel.Overload("glob_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(pattern, name ref.Val) ref.Val {
					p, ok1 := pattern.Value().(string)
					n, ok2 := name.Value().(string)
					if !ok1 || !ok2 {
						return types.Bool(false)
					}
					matched, _ := filepath.Match(p, n)
					return types.Bool(matched)
				}),
			),
		),
	)
}

// buildActivation maps an access request onto the environment's variables.
func buildActivation(req session.AccessRequest) map[string]any {
	return map[string]any{
		"role":          req.Role.Short(),
		"page":          string(req.Page),
		"user_id":       req.UserID,
		"authenticated": req.Authenticated,
	}
}
