package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

func TestSweep_ExpiresStaleApplications(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	stale := env.submit(t, env.prospect(t, "jane").ID, property.ID)
	env.clock.Advance(20 * 24 * time.Hour)
	fresh := env.submit(t, env.prospect(t, "john").ID, property.ID)
	env.clock.Advance(11 * 24 * time.Hour)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{})
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ApplicationsExpired)
	assert.Equal(t, workflow.ApplicationExpired, env.application(t, stale.ID).Status)
	assert.Equal(t, workflow.ApplicationSubmitted, env.application(t, fresh.ID).Status)
	assert.Equal(t, workflow.PropertyApplicationPending, env.reloadProperty(t, property.ID).Status)

	assert.Equal(t, []string{"Submit"}, actions(env.history(t, entity.TypeRentalApplication, stale.ID)),
		"background transitions are not audited by default")
}

func TestSweep_AuditsWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	app := env.submit(t, env.prospect(t, "jane").ID, env.property(t).ID)
	env.clock.Advance(31 * 24 * time.Hour)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{AuditTransitions: true})
	_, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)

	rows := env.history(t, entity.TypeRentalApplication, app.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, "Expire", rows[1].Action)
	assert.Equal(t, port.SystemUserID, rows[1].PerformedBy)
	assert.Equal(t, testOrg, rows[1].OrganizationID)
}

func TestSweep_ExpiresPendingOffers(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	prospect := env.prospect(t, "jane")
	app := env.approved(t, prospect.ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))
	env.clock.Advance(8 * 24 * time.Hour)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{})
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OffersExpired)
	assert.Equal(t, 0, report.ApplicationsExpired)

	stored, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferExpired, stored.Status)
	assert.Equal(t, workflow.ApplicationExpired, env.application(t, app.ID).Status)
	assert.Equal(t, workflow.PropertyAvailable, env.reloadProperty(t, property.ID).Status)
}

func TestSweep_KeepsOfferWithinItsWindow(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	app := env.approved(t, env.prospect(t, "jane").ID, property.ID)

	env.clock.Advance(28 * 24 * time.Hour)
	offer := env.offered(t, app.ID, env.clock.Now().AddDate(0, 1, 0))
	env.clock.Advance(3 * 24 * time.Hour)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{})
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Zero(t, report.Total())

	stored, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferPending, stored.Status)
	assert.Equal(t, workflow.ApplicationLeaseOffered, env.application(t, app.ID).Status)

	res := env.applications.ExpireApplication(env.ctx, app.ID)
	assert.False(t, res.Success)
	assert.Equal(t, "Application has a lease offer that has not reached its expiration date", res.Message)

	env.clock.Advance(5 * 24 * time.Hour)
	report, err = svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OffersExpired)
	assert.Equal(t, workflow.ApplicationExpired, env.application(t, app.ID).Status)
}

func TestSweep_LeaseLifecycle(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	app := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 0, 3))
	accepted := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "")
	require.True(t, accepted.Success, accepted.Message)
	require.Equal(t, workflow.LeasePending, accepted.Data.Lease.Status)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{BatchSize: 1})

	env.clock.Advance(4 * 24 * time.Hour)
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, 1, report.LeasesActivated)

	lease, err := env.repos().Leases().GetByID(env.ctx, testOrg, accepted.Data.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseActive, lease.Status)

	env.clock.now = lease.EndDate.Add(24 * time.Hour)
	report, err = svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, 1, report.LeasesExpired)

	lease, err = env.repos().Leases().GetByID(env.ctx, testOrg, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseExpired, lease.Status)
	assert.Equal(t, workflow.PropertyAvailable, env.reloadProperty(t, property.ID).Status)

	deposit, err := env.repos().Deposits().GetByLeaseID(env.ctx, testOrg, lease.ID)
	require.NoError(t, err)
	require.NotNil(t, deposit.PoolExitDate)
	assert.True(t, deposit.PoolExitDate.Equal(lease.EndDate))

	idle, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Zero(t, idle.Total())
}

func TestSweep_ActivatesThenExpiresLapsedLease(t *testing.T) {
	env := newTestEnv(t)
	app := env.approved(t, env.prospect(t, "jane").ID, env.property(t).ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 0, 3))
	accepted := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "")
	require.True(t, accepted.Success, accepted.Message)
	require.Equal(t, workflow.LeasePending, accepted.Data.Lease.Status)

	env.clock.now = accepted.Data.Lease.EndDate.Add(24 * time.Hour)
	svc := NewMaintenanceService(env.deps, MaintenanceOptions{})
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)

	assert.Equal(t, 1, report.LeasesActivated)
	assert.Equal(t, 1, report.LeasesExpired)

	lease, err := env.repos().Leases().GetByID(env.ctx, testOrg, accepted.Data.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseExpired, lease.Status)
}

func TestSweep_DrainsInBatches(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	var ids []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, env.submit(t, env.prospect(t, name).ID, property.ID).ID)
	}
	env.clock.Advance(31 * 24 * time.Hour)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{BatchSize: 2})
	report, err := svc.Sweep(context.Background(), testOrg)
	require.NoError(t, err)

	assert.Equal(t, 5, report.ApplicationsExpired)
	for _, id := range ids {
		assert.Equal(t, workflow.ApplicationExpired, env.application(t, id).Status)
	}
	assert.Equal(t, workflow.PropertyAvailable, env.reloadProperty(t, property.ID).Status)
}

func TestOrganizations(t *testing.T) {
	env := newTestEnv(t)
	env.property(t)

	svc := NewMaintenanceService(env.deps, MaintenanceOptions{})
	orgs, err := svc.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testOrg}, orgs)
}
