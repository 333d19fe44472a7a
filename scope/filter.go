package scope

import "fmt"

// Filter is an advisory visibility predicate. Zero-value fields impose
// no constraint. The persistence layer translates a Filter into its own
// query language; [Filter.Matches] provides the reference semantics.
type Filter struct {
	// OrgID restricts records to one organization when non-empty.
	OrgID string
	// CreatedBy restricts records to those created by this subject.
	CreatedBy string
	// AssignedStaff requires this subject to appear in the record's
	// assigned-staff list.
	AssignedStaff string
	// OwnershipAny relaxes CreatedBy and AssignedStaff from AND to OR.
	// Set for researchers, who see records they created or are assigned to.
	OwnershipAny bool
}

// Record is the slice of a domain record the predicate can see.
type Record struct {
	OrgID         string
	CreatedBy     string
	AssignedStaff []string
}

// Narrow intersects base with the restriction implied by the principal's
// role. Narrowing only ever tightens: a caller-supplied ownership
// constraint in base survives for roles that do not impose their own.
func Narrow(p Principal, base Filter) (Filter, error) {
	switch p.Role {
	case RoleSuperadmin:
		// Platform-wide; the base filter passes through untouched.
		return base, nil
	case RoleAdmin:
		base.OrgID = p.OrgID
		return base, nil
	case RoleResearcher:
		base.OrgID = p.OrgID
		base.CreatedBy = p.SubjectID
		base.AssignedStaff = p.SubjectID
		base.OwnershipAny = true
		return base, nil
	case RoleStaff:
		base.OrgID = p.OrgID
		base.AssignedStaff = p.SubjectID
		base.OwnershipAny = false
		return base, nil
	default:
		return Filter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
}

// Matches evaluates the predicate against a record summary.
func (f Filter) Matches(rec Record) bool {
	if f.OrgID != "" && rec.OrgID != f.OrgID {
		return false
	}

	if f.OwnershipAny && f.CreatedBy != "" && f.AssignedStaff != "" {
		return rec.CreatedBy == f.CreatedBy || containsStaff(rec.AssignedStaff, f.AssignedStaff)
	}

	if f.CreatedBy != "" && rec.CreatedBy != f.CreatedBy {
		return false
	}
	if f.AssignedStaff != "" && !containsStaff(rec.AssignedStaff, f.AssignedStaff) {
		return false
	}
	return true
}

func containsStaff(staff []string, subject string) bool {
	for _, id := range staff {
		if id == subject {
			return true
		}
	}
	return false
}
