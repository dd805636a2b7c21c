package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All run-tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid run-tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Feature and label column names. The encoder and the trainer address
// columns by these names, so they stay in one place.
const (
	ColMonthlyFee     = "monthly_fee"
	ColWeeklyLogins   = "weekly_logins"
	ColSupportTickets = "support_tickets"
	ColTenureDays     = "tenure_days"
	ColTenureMonths   = "tenure_months"
	ColRevenue        = "revenue"

	ColPlanTier         = "plan_tier"
	ColDeviceType       = "device_type"
	ColPaymentMethod    = "payment_method"
	ColPaymentFrequency = "payment_frequency"
	ColReferralSource   = "referral_source"
	ColRegion           = "region"
	ColCountry          = "country"
	ColGender           = "gender"
	ColAgeGroup         = "age_group"

	ColStatus = "status" // the churn label
)

// NumericColumns is the ordered list of numeric feature columns.
var NumericColumns = []string{
	ColMonthlyFee,
	ColWeeklyLogins,
	ColSupportTickets,
	ColTenureDays,
	ColTenureMonths,
	ColRevenue,
}

// CategoricalColumns is the ordered list of categorical feature columns.
var CategoricalColumns = []string{
	ColPlanTier,
	ColDeviceType,
	ColPaymentMethod,
	ColPaymentFrequency,
	ColReferralSource,
	ColRegion,
	ColCountry,
	ColGender,
	ColAgeGroup,
}
