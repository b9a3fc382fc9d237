package factory

// =============================================================================
// PRESET ROSTERS - Used by demo scenarios and tests
// =============================================================================

// SmallTeamJSON is one manager with two direct reports.
func SmallTeamJSON() string {
	return `{
  "collaborators": [
    {"key": "ann", "name": "Ann Lee",   "role": "manager",  "hired_at": "2015-10-18", "base_rate": "3000"},
    {"key": "bob", "name": "Bob Stone", "role": "employee", "hired_at": "2018-03-01"},
    {"key": "cid", "name": "Cid Moore", "role": "employee", "hired_at": "2020-06-15", "base_rate": "1800"}
  ],
  "reporting_lines": [
    {"chief": "ann", "subordinate": "bob"},
    {"chief": "ann", "subordinate": "cid"}
  ]
}`
}

// SalesOrgJSON is a three-level organization under a head of sales:
//
//	sara (sales)
//	├── max (manager)
//	│   ├── eva (employee)
//	│   └── ian (employee)
//	└── sam (sales)
//	    └── kim (employee)
//	joe (employee, no chief)
func SalesOrgJSON() string {
	return `{
  "collaborators": [
    {"key": "sara", "name": "Sara Quinn", "role": "sales",    "hired_at": "2012-01-10", "base_rate": "4000"},
    {"key": "max",  "name": "Max Ortiz",  "role": "manager",  "hired_at": "2016-05-01", "base_rate": "3200"},
    {"key": "eva",  "name": "Eva Brandt", "role": "employee", "hired_at": "2017-02-20"},
    {"key": "ian",  "name": "Ian Fisher", "role": "employee", "hired_at": "2021-11-03", "base_rate": "1500"},
    {"key": "sam",  "name": "Sam Price",  "role": "sales",    "hired_at": "2019-09-01", "base_rate": "2500"},
    {"key": "kim",  "name": "Kim Novak",  "role": "employee", "hired_at": "2022-04-11"},
    {"key": "joe",  "name": "Joe Park",   "role": "employee", "hired_at": "2010-07-01", "base_rate": "2200"}
  ],
  "reporting_lines": [
    {"chief": "sara", "subordinate": "max"},
    {"chief": "max",  "subordinate": "eva"},
    {"chief": "max",  "subordinate": "ian"},
    {"chief": "sara", "subordinate": "sam"},
    {"chief": "sam",  "subordinate": "kim"}
  ]
}`
}
