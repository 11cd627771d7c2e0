package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"phonegate/internal/authz"
	"phonegate/internal/config"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

const (
	plainUser   = 1
	adminUser   = 2
	phonelessID = 3
	adminPhone  = 4
)

type gateFixture struct {
	store  *flakyStore
	sender *fakeSender
	users  *repositories.MemoryUserDirectory
	gate   *AccessGate
}

func newGateFixture(t *testing.T, failClosed bool) *gateFixture {
	t.Helper()
	f := &gateFixture{
		store:  newFlakyStore(),
		sender: &fakeSender{},
		users: repositories.NewMemoryUserDirectory(
			models.User{ID: plainUser, PhoneNumber: strPtr("5551112222"), RoleID: authz.RoleUser},
			models.User{ID: adminUser, RoleID: authz.RoleAdmin},
			models.User{ID: phonelessID, PhoneNumber: strPtr("  "), RoleID: authz.RoleUser},
			models.User{ID: adminPhone, PhoneNumber: strPtr("5559998888"), RoleID: authz.RoleAdmin},
		),
	}
	iss := newTestIssuer(t, f.store, f.sender)
	f.gate = NewAccessGate(f.users, f.store, iss, config.DefaultAllowedRoutes, failClosed, zap.NewNop())
	return f
}

func TestGate_PassWithoutLookup(t *testing.T) {
	f := newGateFixture(t, false)
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int
		route  string
		reason string
	}{
		{"anonymous", models.AnonymousUserID, "dashboard", ReasonAnonymous},
		{"admin without phone", adminUser, "dashboard", ReasonExempt},
		{"admin with phone", adminPhone, "dashboard", ReasonExempt},
		{"blank phone", phonelessID, "dashboard", ReasonNoPhone},
		{"unknown user", 99, "dashboard", ReasonNoPhone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := f.gate.Decide(ctx, tc.userID, tc.route)
			assert.Equal(t, DecisionPass, d.Decision)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
	assert.Empty(t, f.sender.Sent())
	assert.Equal(t, 0, f.store.Count("5559998888"))
}

func TestGate_AllowListedRoutesNeverIssue(t *testing.T) {
	f := newGateFixture(t, false)
	for i := 0; i < 3; i++ {
		for _, route := range config.DefaultAllowedRoutes {
			d := f.gate.Decide(context.Background(), plainUser, route)
			assert.Equal(t, DecisionPass, d.Decision, route)
			assert.Equal(t, ReasonAllowedRoute, d.Reason)
		}
	}
	assert.Equal(t, 0, f.store.Count("5551112222"))
	assert.Empty(t, f.sender.Sent())
}

func TestGate_FirstTouchIssuesOnceThenRedirects(t *testing.T) {
	f := newGateFixture(t, false)
	ctx := context.Background()

	d := f.gate.Decide(ctx, plainUser, "dashboard")
	assert.Equal(t, GateDecision{DecisionRedirect, ReasonIssued}, d)

	d = f.gate.Decide(ctx, plainUser, "reports")
	assert.Equal(t, GateDecision{DecisionRedirect, ReasonUnverified}, d)

	assert.Equal(t, 1, f.store.Count("5551112222"))
	assert.Len(t, f.sender.Sent(), 1)
}

func TestGate_VerifiedPasses(t *testing.T) {
	f := newGateFixture(t, false)
	seed(t, f.store, "5551112222", "123456", models.StatusVerified)

	d := f.gate.Decide(context.Background(), plainUser, "dashboard")
	assert.Equal(t, GateDecision{DecisionPass, ReasonVerified}, d)
}

func TestGate_DeliveryFailureStillRedirects(t *testing.T) {
	f := newGateFixture(t, false)
	f.sender.err = errors.New("provider down")

	d := f.gate.Decide(context.Background(), plainUser, "dashboard")
	assert.Equal(t, DecisionRedirect, d.Decision)
	assert.Equal(t, 1, f.store.Count("5551112222"))
}

func TestGate_IssuanceWriteFailureStillRedirects(t *testing.T) {
	f := newGateFixture(t, false)
	f.store.failWrite = true

	d := f.gate.Decide(context.Background(), plainUser, "dashboard")
	assert.Equal(t, GateDecision{DecisionRedirect, ReasonUnverified}, d)
}

func TestGate_StoreDownFailsOpen(t *testing.T) {
	f := newGateFixture(t, false)
	f.store.failGet = true

	d := f.gate.Decide(context.Background(), plainUser, "dashboard")
	assert.Equal(t, GateDecision{DecisionPass, ReasonStoreError}, d)
}

func TestGate_StoreDownFailClosed(t *testing.T) {
	f := newGateFixture(t, true)
	f.store.failGet = true

	d := f.gate.Decide(context.Background(), plainUser, "dashboard")
	assert.Equal(t, GateDecision{DecisionRedirect, ReasonStoreError}, d)
}

func TestGate_VerifyThenPass(t *testing.T) {
	f := newGateFixture(t, false)
	ctx := context.Background()

	require.Equal(t, DecisionRedirect, f.gate.Decide(ctx, plainUser, "dashboard").Decision)
	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	rec, _ := f.store.GetLatest(ctx, "5551112222")

	out, err := NewOTPVerifier(f.store, zap.NewNop()).Verify(ctx, "5551112222", rec.Code)
	require.NoError(t, err)
	require.Equal(t, VerifySuccess, out)

	assert.Equal(t, DecisionPass, f.gate.Decide(ctx, plainUser, "dashboard").Decision)
}
