package pdlgen

import (
	"errors"

	"github.com/reoring/pdlgen/internal/config"
	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/filter"
	"github.com/reoring/pdlgen/internal/gen"
	"github.com/reoring/pdlgen/internal/lexer"
	"github.com/reoring/pdlgen/internal/merge"
	"github.com/reoring/pdlgen/internal/parser"
	"github.com/reoring/pdlgen/internal/resolve"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeLexError            = "lex_error"
	CodeParseError          = "parse_error"
	CodeDuplicateDefinition = "duplicate_definition"
	CodeUnresolvedType      = "unresolved_type"
	CodeRedirectCycle       = "redirect_cycle"
	CodeCircularDependency  = "circular_dependency"
	CodePrunedDependency    = "pruned_dependency"
	CodeIdentifierCollision = "identifier_collision"
	CodeConfigError         = "config_error"
)

// Stage errors. Every one reports its code through Code().
type (
	// LexError reports an unrecognised character or a tab in indentation.
	LexError = lexer.Error
	// ParseError reports a grammar violation.
	ParseError = parser.Error
	// DuplicateDefinitionError reports a member defined twice in a merged
	// domain, or a domain declared twice in one file.
	DuplicateDefinitionError = merge.DuplicateError
	// UnresolvedTypeError reports a reference or redirect with no target.
	UnresolvedTypeError = resolve.UnresolvedError
	// RedirectCycleError reports a redirect chain returning to itself.
	RedirectCycleError = resolve.RedirectCycleError
	// CircularDependencyError reports a dependency cycle with an edge the
	// allow-list does not sanction.
	CircularDependencyError = resolve.CircularError
	// PrunedDependencyError reports a required reference to a filtered type.
	PrunedDependencyError = filter.PrunedDependencyError
	// IdentifierCollisionError reports two definitions with one Go name.
	IdentifierCollisionError = gen.IdentifierCollisionError
	// ConfigError reports an invalid configuration value or file.
	ConfigError = config.Error
)

// ErrorList aggregates the errors of one stage. It implements
// Unwrap() []error, so errors.As reaches every member, and its Error()
// summarizes the first three.
type ErrorList = diag.List

// CodeOf returns the code of the first coded error in err's tree, or "".
func CodeOf(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Errors flattens err into its members: the elements of an ErrorList, or
// err itself.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var list ErrorList
	if errors.As(err, &list) {
		return append([]error(nil), list...)
	}
	return []error{err}
}
