// Package schema has the typed data model shared by all parts of churnlab.
package schema

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for date columns in customer exports.
const DateFormat = "2006-01-02"

// Date wraps time.Time so gocsv can parse the date columns of a customer
// export without per-column coercion scattered across pipeline steps.
type Date struct {
	time.Time
}

// UnmarshalCSV parses a date cell. ISO date first, RFC3339 as a fallback
// for exports that carry full timestamps.
func (d *Date) UnmarshalCSV(s string) error {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	d.Time = t
	return nil
}

// MarshalCSV renders the date in ISO form.
func (d Date) MarshalCSV() (string, error) {
	return d.Format(DateFormat), nil
}

// CustomerRecord is one row of the customer table. The loader guarantees a
// unique CustomerID and a non-empty Status label for every record.
type CustomerRecord struct {
	CustomerID       string  `csv:"customer_id" json:"customer_id"`
	JoinDate         Date    `csv:"join_date" json:"join_date"`
	LastLoginDate    Date    `csv:"last_login_date" json:"last_login_date"`
	MonthlyFee       float64 `csv:"monthly_fee" json:"monthly_fee"`
	WeeklyLogins     int     `csv:"weekly_logins" json:"weekly_logins"`
	SupportTickets   int     `csv:"support_tickets" json:"support_tickets"`
	PlanTier         string  `csv:"plan_tier" json:"plan_tier"`
	DeviceType       string  `csv:"device_type" json:"device_type"`
	PaymentMethod    string  `csv:"payment_method" json:"payment_method"`
	PaymentFrequency string  `csv:"payment_frequency" json:"payment_frequency"`
	ReferralSource   string  `csv:"referral_source" json:"referral_source"`
	Region           string  `csv:"region" json:"region"`
	Country          string  `csv:"country" json:"country"`
	Gender           string  `csv:"gender" json:"gender"`
	AgeGroup         string  `csv:"age_group" json:"age_group"`
	Status           string  `csv:"status" json:"status"`
}

// EngineeredRecord is a CustomerRecord plus the derived attributes. The
// derived fields are pure functions of the raw fields and are never mutated
// independently of them.
type EngineeredRecord struct {
	CustomerRecord

	TenureDays   int     `json:"tenure_days"`   // days between join and last login; may be negative (data quality)
	TenureMonths float64 `json:"tenure_months"` // TenureDays/30, rounded to one decimal
	Revenue      float64 `json:"revenue"`       // MonthlyFee * TenureMonths
}

// NumericValue returns the value of a numeric feature column.
func (r *EngineeredRecord) NumericValue(col string) (float64, bool) {
	switch col {
	case ColMonthlyFee:
		return r.MonthlyFee, true
	case ColWeeklyLogins:
		return float64(r.WeeklyLogins), true
	case ColSupportTickets:
		return float64(r.SupportTickets), true
	case ColTenureDays:
		return float64(r.TenureDays), true
	case ColTenureMonths:
		return r.TenureMonths, true
	case ColRevenue:
		return r.Revenue, true
	default:
		return 0, false
	}
}

// CategoricalValue returns the raw string value of a categorical column.
func (r *EngineeredRecord) CategoricalValue(col string) (string, bool) {
	switch col {
	case ColPlanTier:
		return r.PlanTier, true
	case ColDeviceType:
		return r.DeviceType, true
	case ColPaymentMethod:
		return r.PaymentMethod, true
	case ColPaymentFrequency:
		return r.PaymentFrequency, true
	case ColReferralSource:
		return r.ReferralSource, true
	case ColRegion:
		return r.Region, true
	case ColCountry:
		return r.Country, true
	case ColGender:
		return r.Gender, true
	case ColAgeGroup:
		return r.AgeGroup, true
	default:
		return "", false
	}
}
