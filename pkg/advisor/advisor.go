package advisor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Type is the rule id an advisor is registered under.
type Type string

// Context is everything an advisor needs to evaluate one query.
type Context struct {
	Platform types.Platform
	Dialect  *dialect.Dialect
	Rule     *types.Rule
	Category types.Category

	// Statement is the query exactly as the caller passed it.
	Statement string
	// Code is Statement lowercased with comments and string contents blanked.
	// It has the same length as Statement so offsets can be shared.
	Code string
}

// NewContext builds a Context for statement. Rule and Category are filled in
// per rule by the caller.
func NewContext(platform types.Platform, statement string) Context {
	return Context{
		Platform:  platform,
		Dialect:   dialect.Get(platform),
		Statement: statement,
		Code:      strings.ToLower(sqltext.Code(statement)),
	}
}

// Issue creates an issue for the current rule. A negative offset leaves the
// position unset.
func (c Context) Issue(offset int, message, recommendation string) *types.Issue {
	issue := &types.Issue{
		Category:       c.Category,
		Message:        message,
		Recommendation: recommendation,
	}
	if c.Rule != nil {
		issue.ID = c.Rule.ID
		issue.Severity = c.Rule.Severity
		issue.Description = c.Rule.Description
	}
	if offset >= 0 {
		line, col := sqltext.Locate(c.Statement, offset)
		issue.Line = types.IntPtr(line)
		issue.Column = types.IntPtr(col)
	}
	return issue
}

// Advisor evaluates one rule against a query.
type Advisor interface {
	Check(checkCtx Context) ([]*types.Issue, error)
}

// Func adapts a plain function to the Advisor interface.
type Func func(checkCtx Context) ([]*types.Issue, error)

// Check calls f.
func (f Func) Check(checkCtx Context) ([]*types.Issue, error) {
	return f(checkCtx)
}

var (
	advisorMu sync.RWMutex
	advisors  = make(map[types.Platform]map[Type]Advisor)
)

// Register makes an advisor available by the provided id.
// If Register is called twice with the same name or if advisor is nil,
// it panics.
func Register(platform types.Platform, advType Type, f Advisor) {
	advisorMu.Lock()
	defer advisorMu.Unlock()
	if f == nil {
		panic("advisor: Register advisor is nil")
	}
	platformAdvisors, ok := advisors[platform]
	if !ok {
		advisors[platform] = map[Type]Advisor{
			advType: f,
		}
	} else {
		if _, dup := platformAdvisors[advType]; dup {
			panic(fmt.Sprintf("advisor: Register called twice for advisor %v for %v", advType, platform))
		}
		platformAdvisors[advType] = f
	}
}

// RegisterAll registers the advisor for every known platform.
func RegisterAll(advType Type, f Advisor) {
	for _, p := range types.Platforms {
		Register(p, advType, f)
	}
}

// Has reports whether an advisor is registered for the platform and id.
func Has(platform types.Platform, advType Type) bool {
	advisorMu.RLock()
	defer advisorMu.RUnlock()
	_, ok := advisors[platform][advType]
	return ok
}

// Types returns the registered ids for a platform, sorted.
func Types(platform types.Platform) []Type {
	advisorMu.RLock()
	defer advisorMu.RUnlock()
	ids := make([]Type, 0, len(advisors[platform]))
	for id := range advisors[platform] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Check runs the advisor and returns its issues.
func Check(platform types.Platform, advType Type, checkCtx Context) (issues []*types.Issue, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panicErr, ok := panicErr.(error)
			if !ok {
				panicErr = errors.Errorf("%v", panicErr)
			}
			err = errors.Errorf("advisor check PANIC RECOVER, type: %v, err: %v", advType, panicErr)
			slog.Warn("advisor check PANIC RECOVER",
				"error", panicErr,
				"rule", advType,
				"statement", NormalizeStatement(checkCtx.Statement))
		}
	}()

	advisorMu.RLock()
	platformAdvisors, ok := advisors[platform]
	if !ok {
		advisorMu.RUnlock()
		return nil, errors.Errorf("advisor: unknown platform %v", platform)
	}
	f, ok := platformAdvisors[advType]
	advisorMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("advisor: unknown advisor %v for %v", advType, platform)
	}

	return f.Check(checkCtx)
}
