package domain

// Role is the active role of an authenticated actor.
type Role string

const (
	RoleAuditor Role = "AUDITOR"
	RoleClient  Role = "CLIENT"
	RoleSponsor Role = "SPONSOR"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAuditor, RoleClient, RoleSponsor:
		return true
	}
	return false
}

// Mark is the grade an auditor assigns to an audit record.
type Mark string

const (
	MarkAPlus  Mark = "A+"
	MarkA      Mark = "A"
	MarkB      Mark = "B"
	MarkC      Mark = "C"
	MarkF      Mark = "F"
	MarkFMinus Mark = "F-"
)

func (m Mark) String() string { return string(m) }

func (m Mark) IsValid() bool {
	switch m {
	case MarkAPlus, MarkA, MarkB, MarkC, MarkF, MarkFMinus:
		return true
	}
	return false
}

// AllMarks lists every mark in display order for form choice lists.
func AllMarks() []Mark {
	return []Mark{MarkAPlus, MarkA, MarkB, MarkC, MarkF, MarkFMinus}
}

// SponsorshipType distinguishes monetary from in-kind sponsorships.
type SponsorshipType string

const (
	SponsorshipFinancial SponsorshipType = "FINANCIAL"
	SponsorshipInKind    SponsorshipType = "IN_KIND"
)

func (t SponsorshipType) String() string { return string(t) }

func (t SponsorshipType) IsValid() bool {
	switch t {
	case SponsorshipFinancial, SponsorshipInKind:
		return true
	}
	return false
}

// AllSponsorshipTypes lists every sponsorship type for form choice lists.
func AllSponsorshipTypes() []SponsorshipType {
	return []SponsorshipType{SponsorshipFinancial, SponsorshipInKind}
}
