package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"phonegate/internal/authz"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

type Decision int

const (
	DecisionPass Decision = iota
	DecisionRedirect
)

func (d Decision) String() string {
	if d == DecisionRedirect {
		return "redirect"
	}
	return "pass"
}

// Reasons attached to gate decisions, mostly for logs and tests.
const (
	ReasonAnonymous    = "anonymous"
	ReasonExempt       = "exempt"
	ReasonNoPhone      = "no_phone"
	ReasonAllowedRoute = "allowed_route"
	ReasonVerified     = "verified"
	ReasonUnverified   = "unverified"
	ReasonIssued       = "issued"
	ReasonStoreError   = "store_error"
)

type GateDecision struct {
	Decision Decision
	Reason   string
}

// FirstTouchIssuer is the part of CodeIssuer the gate needs.
type FirstTouchIssuer interface {
	EnsureIssued(ctx context.Context, phone string) (IssueOutcome, bool, error)
}

// AccessGate decides per request whether a signed-in user may proceed or has
// to verify their phone first. It holds no per-request state.
type AccessGate struct {
	Users  repositories.UserDirectory
	Store  repositories.VerificationStore
	Issuer FirstTouchIssuer

	allowed    map[string]struct{}
	failClosed bool
	log        *zap.Logger
}

func NewAccessGate(
	users repositories.UserDirectory,
	store repositories.VerificationStore,
	issuer FirstTouchIssuer,
	allowedRoutes []string,
	failClosed bool,
	logger *zap.Logger,
) *AccessGate {
	allowed := make(map[string]struct{}, len(allowedRoutes))
	for _, r := range allowedRoutes {
		allowed[r] = struct{}{}
	}
	return &AccessGate{
		Users:      users,
		Store:      store,
		Issuer:     issuer,
		allowed:    allowed,
		failClosed: failClosed,
		log:        logger,
	}
}

func (g *AccessGate) IsAllowedRoute(route string) bool {
	_, ok := g.allowed[route]
	return ok
}

// Decide walks the checks in order: anonymous, exempt permission, no phone,
// allow-listed route, then the newest verification row. A phone with no row
// gets its first code here. Infrastructure errors are logged and answered
// with PASS unless the gate is configured fail-closed.
func (g *AccessGate) Decide(ctx context.Context, userID int, route string) GateDecision {
	if userID == models.AnonymousUserID {
		return GateDecision{DecisionPass, ReasonAnonymous}
	}

	user, err := g.Users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		g.log.Warn("Gate: authenticated user not found", zap.Int("userID", userID))
		return GateDecision{DecisionPass, ReasonNoPhone}
	}
	if err != nil {
		return g.infraError("load user", userID, err)
	}

	if authz.IsExempt(user.RoleID) {
		return GateDecision{DecisionPass, ReasonExempt}
	}
	phone, ok := user.Phone()
	if !ok {
		return GateDecision{DecisionPass, ReasonNoPhone}
	}
	if g.IsAllowedRoute(route) {
		return GateDecision{DecisionPass, ReasonAllowedRoute}
	}

	rec, err := g.Store.GetLatest(ctx, phone)
	if err != nil {
		return g.infraError("load verification", userID, err)
	}
	if rec == nil {
		_, issued, err := g.Issuer.EnsureIssued(ctx, phone)
		if err != nil {
			// The redirect still happens: the user can ask for a resend there.
			g.log.Error("Gate: first-touch issuance failed", zap.Int("userID", userID), zap.Error(err))
		}
		if issued {
			return GateDecision{DecisionRedirect, ReasonIssued}
		}
		return GateDecision{DecisionRedirect, ReasonUnverified}
	}
	if rec.IsVerified() {
		return GateDecision{DecisionPass, ReasonVerified}
	}
	return GateDecision{DecisionRedirect, ReasonUnverified}
}

func (g *AccessGate) infraError(step string, userID int, err error) GateDecision {
	g.log.Error("Gate: "+step+" failed",
		zap.Int("userID", userID),
		zap.Bool("failClosed", g.failClosed),
		zap.Error(err))
	if g.failClosed {
		return GateDecision{DecisionRedirect, ReasonStoreError}
	}
	return GateDecision{DecisionPass, ReasonStoreError}
}
