package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

func TestGenerateLeaseOffer(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	prospect := env.prospect(t, "jane")
	app := env.approved(t, prospect.ID, property.ID)

	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))

	assert.Equal(t, workflow.LeaseOfferPending, offer.Status)
	assert.True(t, offer.ExpiresOn.Equal(fixedNow.AddDate(0, 0, entity.DefaultLeaseOfferExpirationDays)))
	assert.True(t, offer.MonthlyRent.Equal(decimal.NewFromInt(1500)), "rent defaults to the property's")

	assert.Equal(t, workflow.ApplicationLeaseOffered, env.application(t, app.ID).Status)
	assert.Equal(t, workflow.ProspectLeaseOffered, env.reloadProspect(t, prospect.ID).Status)
	assert.Equal(t, workflow.PropertyLeasePending, env.reloadProperty(t, property.ID).Status)
	assert.Equal(t, []string{"Generate"}, actions(env.history(t, entity.TypeLeaseOffer, offer.ID)))
}

func TestGenerateLeaseOffer_Rejections(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	submitted := env.submit(t, env.prospect(t, "jane").ID, property.ID)

	tests := []struct {
		name    string
		appID   string
		terms   LeaseTerms
		message string
	}{
		{
			name:    "missing dates",
			appID:   submitted.ID,
			terms:   LeaseTerms{},
			message: "Invalid lease terms",
		},
		{
			name:    "end before start",
			appID:   submitted.ID,
			terms:   LeaseTerms{StartDate: fixedNow, EndDate: fixedNow.AddDate(0, -1, 0)},
			message: "Invalid lease terms",
		},
		{
			name:    "application not approved",
			appID:   submitted.ID,
			terms:   LeaseTerms{StartDate: fixedNow, EndDate: fixedNow.AddDate(1, 0, 0)},
			message: "Application must be approved before a lease offer can be generated. Current status: Submitted",
		},
		{
			name:    "unknown application",
			appID:   "missing",
			terms:   LeaseTerms{StartDate: fixedNow, EndDate: fixedNow.AddDate(1, 0, 0)},
			message: "Application not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.offers.GenerateLeaseOffer(env.ctx, tt.appID, tt.terms)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}
	assert.Equal(t, workflow.ApplicationSubmitted, env.application(t, submitted.ID).Status)
}

func TestAcceptLeaseOffer_ConvertsProspect(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	prospect := env.prospect(t, "jane")
	app := env.approved(t, prospect.ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 0, -1))

	res := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "Signed in office")
	require.True(t, res.Success, res.Message)

	lease := res.Data.Lease
	assert.Equal(t, workflow.LeaseActive, lease.Status, "lease starting today or earlier is active")
	require.NotNil(t, lease.LeaseOfferID)
	assert.Equal(t, offer.ID, *lease.LeaseOfferID)
	assert.Equal(t, res.Data.Tenant.ID, lease.TenantID)

	deposit := res.Data.Deposit
	assert.Equal(t, workflow.DepositHeld, deposit.Status)
	assert.True(t, deposit.InInvestmentPool)
	require.NotNil(t, deposit.PoolEntryDate)
	assert.True(t, deposit.PoolEntryDate.Equal(offer.StartDate))

	storedOffer, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferAccepted, storedOffer.Status)
	require.NotNil(t, storedOffer.ConvertedLeaseID)
	assert.Equal(t, lease.ID, *storedOffer.ConvertedLeaseID)
	assert.Equal(t, "Signed in office", storedOffer.ResponseNotes)

	storedProspect := env.reloadProspect(t, prospect.ID)
	assert.Equal(t, workflow.ProspectConvertedToTenant, storedProspect.Status)
	require.NotNil(t, storedProspect.ConvertedTenantID)
	assert.Equal(t, res.Data.Tenant.ID, *storedProspect.ConvertedTenantID)

	assert.Equal(t, workflow.ApplicationLeaseAccepted, env.application(t, app.ID).Status)
	assert.Equal(t, workflow.PropertyOccupied, env.reloadProperty(t, property.ID).Status)
	assert.Contains(t, actions(env.history(t, entity.TypeProspectiveTenant, prospect.ID)), "ConvertToTenant")
}

func TestAcceptLeaseOffer_FutureStartIsPending(t *testing.T) {
	env := newTestEnv(t)
	app := env.approved(t, env.prospect(t, "jane").ID, env.property(t).ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 2, 0))

	res := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, workflow.LeasePending, res.Data.Lease.Status)
}

func TestAcceptLeaseOffer_DeniesCompetingApplications(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	winner := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	loserProspect := env.prospect(t, "john")
	loser := env.submit(t, loserProspect.ID, property.ID)
	offer := env.offered(t, winner.ID, fixedNow)

	require.True(t, env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "").Success)

	stored := env.application(t, loser.ID)
	assert.Equal(t, workflow.ApplicationDenied, stored.Status)
	assert.Equal(t, ReasonLeasedToAnother, stored.DenialReason)
	assert.Equal(t, workflow.ProspectDenied, env.reloadProspect(t, loserProspect.ID).Status)
	assert.Equal(t, workflow.PropertyOccupied, env.reloadProperty(t, property.ID).Status)

	rows := env.history(t, entity.TypeRentalApplication, loser.ID)
	require.NotEmpty(t, rows)
	assert.Equal(t, "AutoDeny", rows[len(rows)-1].Action)
}

func TestGenerateLeaseOffer_OnePendingOfferPerProperty(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	first := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	second := env.approved(t, env.prospect(t, "john").ID, property.ID)
	env.offered(t, first.ID, fixedNow.AddDate(0, 1, 0))

	res := env.offers.GenerateLeaseOffer(env.ctx, second.ID, LeaseTerms{
		StartDate: fixedNow.AddDate(0, 1, 0),
		EndDate:   fixedNow.AddDate(1, 1, 0),
	})

	assert.False(t, res.Success)
	assert.Equal(t, "Another lease offer is pending for this property", res.Message)
	assert.Equal(t, workflow.ApplicationApproved, env.application(t, second.ID).Status)
}

// pendingOffer stores an offer directly, as rows written before offers were limited to one per property would be
func (e *testEnv) pendingOffer(t *testing.T, app *entity.RentalApplication) *entity.LeaseOffer {
	t.Helper()
	repos := e.repos()

	app.Status = workflow.ApplicationLeaseOffered
	require.NoError(t, repos.Applications().Save(e.ctx, app))

	offer := &entity.LeaseOffer{
		RentalApplicationID: app.ID,
		PropertyID:          app.PropertyID,
		ProspectiveTenantID: app.ProspectiveTenantID,
		StartDate:           fixedNow,
		EndDate:             fixedNow.AddDate(1, 0, 0),
		MonthlyRent:         decimal.NewFromInt(1500),
		OfferedOn:           fixedNow,
		ExpiresOn:           fixedNow.AddDate(0, 0, 7),
		Status:              workflow.LeaseOfferPending,
	}
	offer.Stamp(testOrg, testUser, fixedNow)
	require.NoError(t, repos.LeaseOffers().Create(e.ctx, offer))
	return offer
}

func TestAcceptLeaseOffer_WithdrawsCompetingOffers(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	winner := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	loser := env.approved(t, env.prospect(t, "john").ID, property.ID)
	winning := env.offered(t, winner.ID, fixedNow)
	competing := env.pendingOffer(t, env.application(t, loser.ID))

	res := env.offers.AcceptLeaseOffer(env.ctx, winning.ID, "")
	require.True(t, res.Success, res.Message)

	stored, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, competing.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferWithdrawn, stored.Status)

	app := env.application(t, loser.ID)
	assert.Equal(t, workflow.ApplicationExpired, app.Status)
	assert.Equal(t, ReasonLeasedToAnother, app.DenialReason)
	assert.Contains(t, actions(env.history(t, entity.TypeLeaseOffer, competing.ID)), "AutoWithdraw")

	again := env.offers.AcceptLeaseOffer(env.ctx, competing.ID, "")
	assert.False(t, again.Success)
	assert.Equal(t, workflow.PropertyOccupied, env.reloadProperty(t, property.ID).Status)
}

func TestAcceptLeaseOffer_RejectsOccupiedProperty(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	app := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow)

	occupied := env.reloadProperty(t, property.ID)
	occupied.Status = workflow.PropertyOccupied
	require.NoError(t, env.repos().Properties().Save(env.ctx, occupied))

	res := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "")
	assert.False(t, res.Success)
	assert.Equal(t, "Property is currently occupied", res.Message)

	stored, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferPending, stored.Status)
	assert.Equal(t, workflow.ApplicationLeaseOffered, env.application(t, app.ID).Status)
}

func TestAcceptLeaseOffer_RejectsExpiredOffer(t *testing.T) {
	env := newTestEnv(t)
	app := env.approved(t, env.prospect(t, "jane").ID, env.property(t).ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))

	env.clock.Advance(8 * 24 * time.Hour)
	res := env.offers.AcceptLeaseOffer(env.ctx, offer.ID, "")

	assert.False(t, res.Success)
	assert.Equal(t, "Lease offer has expired", res.Message)

	leases, err := env.repos().Leases().ListStarting(env.ctx, testOrg, fixedNow.AddDate(2, 0, 0), 10)
	require.NoError(t, err)
	assert.Empty(t, leases)
}

func TestDeclineLeaseOffer(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	prospect := env.prospect(t, "jane")
	app := env.approved(t, prospect.ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))

	res := env.offers.DeclineLeaseOffer(env.ctx, offer.ID, "Rent too high")
	require.True(t, res.Success, res.Message)

	assert.Equal(t, workflow.ApplicationLeaseDeclined, env.application(t, app.ID).Status)
	assert.Equal(t, workflow.ProspectLeaseDeclined, env.reloadProspect(t, prospect.ID).Status)
	assert.Equal(t, workflow.PropertyAvailable, env.reloadProperty(t, property.ID).Status)

	again := env.offers.DeclineLeaseOffer(env.ctx, offer.ID, "")
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "is a terminal status")
}

func TestWithdrawLeaseOffer(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	app := env.approved(t, env.prospect(t, "jane").ID, property.ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))

	noReason := env.offers.WithdrawLeaseOffer(env.ctx, offer.ID, "")
	assert.False(t, noReason.Success)

	res := env.offers.WithdrawLeaseOffer(env.ctx, offer.ID, "Unit needs repairs")
	require.True(t, res.Success, res.Message)

	stored := env.application(t, app.ID)
	assert.Equal(t, workflow.ApplicationExpired, stored.Status)
	assert.Equal(t, "Unit needs repairs", stored.DenialReason)
	assert.Equal(t, workflow.PropertyAvailable, env.reloadProperty(t, property.ID).Status)
}

func TestExpireLeaseOffer(t *testing.T) {
	env := newTestEnv(t)
	app := env.approved(t, env.prospect(t, "jane").ID, env.property(t).ID)
	offer := env.offered(t, app.ID, fixedNow.AddDate(0, 1, 0))

	early := env.offers.ExpireLeaseOffer(env.ctx, offer.ID)
	assert.False(t, early.Success)

	env.clock.Advance(8 * 24 * time.Hour)
	res := env.offers.ExpireLeaseOffer(env.ctx, offer.ID)
	require.True(t, res.Success, res.Message)

	stored, err := env.repos().LeaseOffers().GetByID(env.ctx, testOrg, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.LeaseOfferExpired, stored.Status)
	assert.Nil(t, stored.RespondedOn)
	assert.Equal(t, workflow.ApplicationExpired, env.application(t, app.ID).Status)
}
