package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sponsorship is a sponsor's commitment to a published project. It transitions
// draft → published exactly once; at publish time the converted sum of its
// invoice totals must equal the declared amount.
type Sponsorship struct {
	ID        uuid.UUID
	Code      string
	Moment    time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Amount    Money
	Email     string
	Link      string
	Type      SponsorshipType
	ProjectID uuid.UUID
	SponsorID uuid.UUID
	DraftMode bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invoice bills part of a sponsorship. The sum of all invoice totals for a
// sponsorship, converted to the system currency, must not exceed the
// sponsorship's declared amount.
type Invoice struct {
	ID               uuid.UUID
	Code             string
	RegistrationTime time.Time
	DueDate          time.Time
	Quantity         Money
	Tax              decimal.Decimal
	Link             string
	DraftMode        bool
	SponsorshipID    uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Total returns quantity × (1 + tax) in the invoice's own currency.
func (i Invoice) Total() Money {
	one := decimal.NewFromInt(1)
	return Money{
		Amount:   i.Quantity.Amount.Mul(one.Add(i.Tax)),
		Currency: i.Quantity.Currency,
	}
}
