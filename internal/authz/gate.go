// Package authz decides whether a user may reach a route.
//
// A route declares a minimum role. Access is granted when the user's role equals
// that minimum or is admin; read does not satisfy write and write does not satisfy
// read. The rule lives in a casbin model so it can be inspected in one place.
package authz

import (
	_ "embed"
	"fmt"

	"fishlog/internal/metrics"
	"fishlog/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

// Decision is the tagged outcome of a route check.
type Decision int

const (
	Authorized Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Gate evaluates role requirements.
type Gate struct {
	enforcer *casbin.Enforcer
}

// NewGate loads the embedded model and one policy row per grantable role.
func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	for _, r := range []models.Role{models.RoleRead, models.RoleWrite, models.RoleAdmin} {
		if _, err := e.AddPolicy(string(r), string(r)); err != nil {
			return nil, fmt.Errorf("failed to add policy for role %s: %w", r, err)
		}
	}
	return &Gate{enforcer: e}, nil
}

// Check decides whether user may reach a route requiring the given role.
// A nil user is unauthenticated.
func (g *Gate) Check(user *models.User, required models.Role) (Decision, error) {
	d, err := g.check(user, required)
	if err != nil {
		return d, err
	}
	metrics.RecordAuthzDecision(string(required), d.String())
	return d, nil
}

func (g *Gate) check(user *models.User, required models.Role) (Decision, error) {
	if user == nil {
		return Unauthenticated, nil
	}
	ok, err := g.enforcer.Enforce(string(user.Role), string(required))
	if err != nil {
		return Forbidden, fmt.Errorf("enforcement failed: %w", err)
	}
	if !ok {
		return Forbidden, nil
	}
	return Authorized, nil
}
