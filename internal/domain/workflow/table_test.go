package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkTableConsistency[S Status](t *testing.T, table *Table[S], all []S) {
	t.Helper()
	for _, from := range all {
		next := table.ValidNextStates(from)
		for _, to := range all {
			want := contains(next, to)
			assert.Equalf(t, want, table.IsValidTransition(from, to),
				"%s: IsValidTransition(%s, %s)", table.Entity(), from, to)
		}
		if table.IsTerminal(from) {
			assert.Emptyf(t, next, "%s: terminal status %s has next states", table.Entity(), from)
		}
	}
}

func TestTables_MembershipMatchesNextStates(t *testing.T) {
	t.Run("application", func(t *testing.T) {
		checkTableConsistency(t, ApplicationTable, AllApplicationStatuses)
	})
	t.Run("lease offer", func(t *testing.T) {
		checkTableConsistency(t, LeaseOfferTable, AllLeaseOfferStatuses)
	})
	t.Run("tour", func(t *testing.T) {
		checkTableConsistency(t, TourTable, AllTourStatuses)
	})
	t.Run("pool", func(t *testing.T) {
		checkTableConsistency(t, PoolTable, AllPoolStatuses)
	})
	t.Run("dividend", func(t *testing.T) {
		checkTableConsistency(t, DividendTable, AllDividendStatuses)
	})
}

func TestApplicationTable_Edges(t *testing.T) {
	tests := []struct {
		from ApplicationStatus
		want []ApplicationStatus
	}{
		{ApplicationSubmitted, []ApplicationStatus{ApplicationUnderReview, ApplicationDenied, ApplicationWithdrawn, ApplicationExpired}},
		{ApplicationUnderReview, []ApplicationStatus{ApplicationScreening, ApplicationDenied, ApplicationWithdrawn, ApplicationExpired}},
		{ApplicationScreening, []ApplicationStatus{ApplicationApproved, ApplicationDenied, ApplicationWithdrawn}},
		{ApplicationApproved, []ApplicationStatus{ApplicationLeaseOffered, ApplicationDenied}},
		{ApplicationLeaseOffered, []ApplicationStatus{ApplicationLeaseAccepted, ApplicationLeaseDeclined, ApplicationExpired}},
		{ApplicationDenied, []ApplicationStatus{}},
		{ApplicationLeaseAccepted, []ApplicationStatus{}},
		{ApplicationLeaseDeclined, []ApplicationStatus{}},
		{ApplicationExpired, []ApplicationStatus{}},
		{ApplicationWithdrawn, []ApplicationStatus{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, ApplicationTable.ValidNextStates(tt.from))
			assert.Equal(t, len(tt.want) == 0, tt.from.IsTerminal())
		})
	}
}

func TestPoolTable_IsLinear(t *testing.T) {
	for i, s := range AllPoolStatuses {
		next := PoolTable.ValidNextStates(s)
		if i == len(AllPoolStatuses)-1 {
			assert.Empty(t, next)
			continue
		}
		assert.Equal(t, []PoolStatus{AllPoolStatuses[i+1]}, next)
		for j := 0; j < i; j++ {
			assert.False(t, PoolTable.IsValidTransition(s, AllPoolStatuses[j]), "no back transition from %s", s)
		}
	}
}

func TestTable_ValidNextStatesReturnsCopy(t *testing.T) {
	next := ApplicationTable.ValidNextStates(ApplicationSubmitted)
	next[0] = ApplicationLeaseAccepted

	assert.False(t, ApplicationTable.IsValidTransition(ApplicationSubmitted, ApplicationLeaseAccepted))
}

func TestTable_InvalidTransitionReason(t *testing.T) {
	reason := ApplicationTable.InvalidTransitionReason(ApplicationSubmitted, ApplicationApproved)
	assert.Contains(t, reason, "from Submitted to Approved")
	for _, s := range []string{"UnderReview", "Denied", "Withdrawn", "Expired"} {
		assert.Contains(t, reason, s)
	}

	terminal := ApplicationTable.InvalidTransitionReason(ApplicationDenied, ApplicationApproved)
	assert.Contains(t, terminal, "terminal")
}

func TestTable_Check(t *testing.T) {
	require.NoError(t, TourTable.Check(TourScheduled, TourCompleted))

	err := TourTable.Check(TourCompleted, TourScheduled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, strings.Contains(err.Error(), "tour"))
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewTableBuilder[TourStatus]("tour").Configure(TourStatus("INVALID"))
}

func TestBuilder_PermitPanicsOnInvalidTarget(t *testing.T) {
	assert.Panics(t, func() {
		NewTableBuilder[TourStatus]("tour").Configure(TourScheduled).Permit(TourStatus("Teleported"))
	})
}

func TestBuilder_PermitIsIdempotent(t *testing.T) {
	b := NewTableBuilder[TourStatus]("tour")
	b.Configure(TourScheduled).Permit(TourCompleted).Permit(TourCompleted)
	table := b.Build()

	assert.Equal(t, []TourStatus{TourCompleted}, table.ValidNextStates(TourScheduled))
}

func TestStatus_ScanRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    ApplicationStatus
		wantErr bool
	}{
		{"string", "UnderReview", ApplicationUnderReview, false},
		{"bytes", []byte("LeaseOffered"), ApplicationLeaseOffered, false},
		{"unknown string", "Pending", "", true},
		{"lower case", "submitted", "", true},
		{"empty", "", "", true},
		{"nil", nil, "", true},
		{"integer", int64(3), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ApplicationStatus
			err := got.Scan(tt.src)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_ValueRoundTripsEveryMember(t *testing.T) {
	for _, s := range AllDividendStatuses {
		v, err := s.Value()
		require.NoError(t, err)

		var back DividendStatus
		require.NoError(t, back.Scan(v))
		assert.Equal(t, s, back)
	}

	_, err := DividendStatus("Lost").Value()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	m, err := ParseStatus[PaymentMethod]("Check")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCheck, m)

	_, err = ParseStatus[PaymentMethod]("Bitcoin")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResult_Constructors(t *testing.T) {
	ok := Ok("done")
	assert.True(t, ok.Success)
	assert.Equal(t, KindSucceeded, ok.Kind)
	assert.Empty(t, ok.Errors)

	fail := Fail("Application not found")
	assert.False(t, fail.Success)
	assert.Equal(t, KindRejected, fail.Kind)
	assert.Equal(t, []string{"Application not found"}, fail.Errors)

	multi := Fail("Validation failed", "name required", "email required")
	assert.Len(t, multi.Errors, 2)

	assert.Equal(t, KindConflict, Conflict("stale").Kind)
	assert.Equal(t, KindFailed, Internal("db down").Kind)

	typed := OkWith(42, "answer")
	assert.Equal(t, 42, typed.Data)
	assert.True(t, typed.Untyped().Success)

	lifted := Lift[int](Fail("nope"))
	assert.Zero(t, lifted.Data)
	assert.False(t, lifted.Success)
}
