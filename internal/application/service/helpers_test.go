package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore/gormstoretest"
	"github.com/xskcdf/Aquiis-sub005/pkg/utils"
)

const (
	testOrg  = "org-1"
	testUser = "user-1"
)

var fixedNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	store *gormstore.Store
	clock *fakeClock
	deps  Deps
	ctx   context.Context

	directory    DirectoryService
	applications ApplicationService
	offers       LeaseOfferService
	tours        TourService
	deposits     DepositService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := gormstoretest.New(t)
	clock := &fakeClock{now: fixedNow}
	users := port.ContextUserContext{}
	metrics := executor.NewMetrics(nil)

	deps := Deps{
		TxManager: store,
		Executor:  executor.New(store, zap.NewNop(), metrics),
		Audit:     executor.NewAuditLogger(store, users, clock, metrics),
		Users:     users,
		Clock:     clock,
		Logger:    utils.NewKeyValueLogger(zap.NewNop()),
	}

	return &testEnv{
		store:        store,
		clock:        clock,
		deps:         deps,
		ctx:          port.WithActor(context.Background(), testUser, testOrg),
		directory:    NewDirectoryService(deps),
		applications: NewApplicationService(deps),
		offers:       NewLeaseOfferService(deps),
		tours:        NewTourService(deps),
		deposits:     NewDepositService(deps, nil),
	}
}

func (e *testEnv) repos() port.Repositories {
	return e.store.Reader()
}

func (e *testEnv) property(t *testing.T) *entity.Property {
	t.Helper()
	res := e.directory.CreateProperty(e.ctx, CreatePropertyRequest{
		Address:     "12 Elm Street",
		City:        "Springfield",
		MonthlyRent: decimal.NewFromInt(1500),
	})
	require.True(t, res.Success, res.Message)
	return res.Data
}

func (e *testEnv) prospect(t *testing.T, first string) *entity.ProspectiveTenant {
	t.Helper()
	res := e.directory.CreateProspect(e.ctx, CreateProspectRequest{
		FirstName: first,
		LastName:  "Doe",
		Email:     first + "@example.com",
	})
	require.True(t, res.Success, res.Message)
	return res.Data
}

func (e *testEnv) submit(t *testing.T, prospectID, propertyID string) *entity.RentalApplication {
	t.Helper()
	res := e.applications.SubmitApplication(e.ctx, SubmitApplicationRequest{
		ProspectiveTenantID: prospectID,
		PropertyID:          propertyID,
		MonthlyIncome:       decimal.NewFromInt(6000),
	})
	require.True(t, res.Success, res.Message)
	return res.Data
}

// approved walks a new application through review and screening to Approved
func (e *testEnv) approved(t *testing.T, prospectID, propertyID string) *entity.RentalApplication {
	t.Helper()
	app := e.submit(t, prospectID, propertyID)

	steps := []workflow.Result{
		e.applications.MarkApplicationFeePaid(e.ctx, app.ID, decimal.NewFromInt(50)),
		e.applications.MarkUnderReview(e.ctx, app.ID),
		e.applications.InitiateScreening(e.ctx, app.ID, ScreeningRequest{BackgroundCheck: true, CreditCheck: true}).Result,
		e.applications.CompleteScreening(e.ctx, app.ID, ScreeningOutcome{OverallResult: workflow.ScreeningPassed}),
		e.applications.ApproveApplication(e.ctx, app.ID),
	}
	for i, res := range steps {
		require.Truef(t, res.Success, "step %d: %s %v", i, res.Message, res.Errors)
	}
	return e.application(t, app.ID)
}

func (e *testEnv) offered(t *testing.T, appID string, start time.Time) *entity.LeaseOffer {
	t.Helper()
	res := e.offers.GenerateLeaseOffer(e.ctx, appID, LeaseTerms{
		StartDate:       start,
		EndDate:         start.AddDate(1, 0, 0),
		SecurityDeposit: decimal.NewFromInt(1500),
	})
	require.True(t, res.Success, res.Message)
	return res.Data
}

func (e *testEnv) application(t *testing.T, id string) *entity.RentalApplication {
	t.Helper()
	app, err := e.repos().Applications().GetByID(e.ctx, testOrg, id)
	require.NoError(t, err)
	require.NotNil(t, app)
	return app
}

func (e *testEnv) reloadProspect(t *testing.T, id string) *entity.ProspectiveTenant {
	t.Helper()
	p, err := e.repos().Prospects().GetByID(e.ctx, testOrg, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (e *testEnv) reloadProperty(t *testing.T, id string) *entity.Property {
	t.Helper()
	p, err := e.repos().Properties().GetByID(e.ctx, testOrg, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (e *testEnv) history(t *testing.T, entityType, id string) []*entity.WorkflowAuditLog {
	t.Helper()
	rows, err := e.repos().AuditLogs().ListByEntity(e.ctx, testOrg, entityType, id)
	require.NoError(t, err)
	return rows
}

func actions(rows []*entity.WorkflowAuditLog) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Action)
	}
	return out
}

func withOrg(organizationID string) context.Context {
	return port.WithActor(context.Background(), testUser, organizationID)
}
