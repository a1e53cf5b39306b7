package core

// DashboardSummary holds the counters and recent activity shown on the dashboard.
type DashboardSummary struct {
	TotalMembers          int64
	TotalUsers            int64
	AttendanceRecords     int64
	TotalGiving           float64
	LastAttendanceTotal   int
	LastAttendanceDate    string
	LastGivingTotal       float64
	LastGivingDate        string
	PendingExpenses       int64
	ApprovedExpensesTotal float64

	// Latest is nil when no giving has been recorded.
	Latest *ServiceBalance

	RecentAttendance []Attendance
	RecentGiving     []Giving
	RecentExpenses   []Expense
}

// ApprovalOutcome is the result of an approval attempt.
type ApprovalOutcome int

const (
	OutcomeApproved ApprovalOutcome = iota + 1
	OutcomeAlreadyApproved
	OutcomeNotFound
)

func (o ApprovalOutcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeAlreadyApproved:
		return "already_approved"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ClearRequest selects ledger tables to purge. Date and ServiceType narrow
// the deletion when set.
type ClearRequest struct {
	Attendance  bool
	Giving      bool
	Expenses    bool
	Date        string
	ServiceType string
}

// Empty reports whether no table was selected.
func (r ClearRequest) Empty() bool {
	return !r.Attendance && !r.Giving && !r.Expenses
}
