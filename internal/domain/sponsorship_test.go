package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_Total(t *testing.T) {
	t.Parallel()

	inv := Invoice{
		Quantity: Money{Amount: decimal.RequireFromString("100.00"), Currency: "EUR"},
		Tax:      decimal.RequireFromString("0.21"),
	}

	total := inv.Total()
	assert.Equal(t, "EUR", total.Currency)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("121.00")))
}

func TestInvoice_Total_ZeroTax(t *testing.T) {
	t.Parallel()

	inv := Invoice{
		Quantity: Money{Amount: decimal.RequireFromString("50.00"), Currency: "USD"},
	}

	total := inv.Total()
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("50.00")))
}

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	for _, r := range []Role{RoleAuditor, RoleClient, RoleSponsor} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, Role("ADMIN").IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("sponsor").IsValid(), "roles are case sensitive")
}

func TestMark_IsValid(t *testing.T) {
	t.Parallel()

	for _, m := range AllMarks() {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, Mark("B+").IsValid())
	assert.False(t, Mark("").IsValid())
	require.Len(t, AllMarks(), 6)
}

func TestSponsorshipType_IsValid(t *testing.T) {
	t.Parallel()

	for _, st := range AllSponsorshipTypes() {
		assert.True(t, st.IsValid(), st)
	}
	assert.False(t, SponsorshipType("BARTER").IsValid())
}
