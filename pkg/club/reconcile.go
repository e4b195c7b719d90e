package club

import (
	"sort"

	"clubdash/models"
)

const (
	PresentLabel = "Present"
	AbsentLabel  = "Absent"
)

// DuesLine is one row of the dues board.
type DuesLine struct {
	MemberID   int64                `json:"member_id"`
	MemberName string               `json:"member_name"`
	Status     models.PaymentStatus `json:"status"`
}

// DuesReconciliation lists every Active member with its payment status, in
// roster order. Members without a status row are Unpaid; Senior members do not
// pay dues and are left out.
func DuesReconciliation(members []models.Member, dues []models.DuesStatus) []DuesLine {
	byMember := make(map[int64]models.PaymentStatus, len(dues))
	for _, d := range dues {
		byMember[d.MemberID] = d.Status
	}
	active := activeSorted(members)
	out := make([]DuesLine, 0, len(active))
	for _, m := range active {
		st, ok := byMember[m.ID]
		if !ok || !st.Valid() {
			st = models.Unpaid
		}
		out = append(out, DuesLine{MemberID: m.ID, MemberName: m.Name, Status: st})
	}
	return out
}

// AttendanceLine is one row of an event's attendance list.
type AttendanceLine struct {
	MemberID     int64               `json:"member_id"`
	MemberName   string              `json:"member_name"`
	MemberStatus models.MemberStatus `json:"member_status"`
	Present      string              `json:"present"`
}

// AttendanceReconciliation joins the event's attendance records with the
// roster. Only members that have a record appear; records pointing at a
// member that no longer exists are dropped.
func AttendanceReconciliation(eventID int64, records []models.Attendance, members []models.Member) []AttendanceLine {
	byID := make(map[int64]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	out := []AttendanceLine{}
	for _, r := range records {
		if r.EventID != eventID {
			continue
		}
		m, ok := byID[r.MemberID]
		if !ok {
			continue
		}
		label := AbsentLabel
		if r.Present {
			label = PresentLabel
		}
		out = append(out, AttendanceLine{MemberID: m.ID, MemberName: m.Name, MemberStatus: m.Status, Present: label})
	}
	return out
}

// PendingRollCall returns the Active members that still have no attendance
// record for eventID.
func PendingRollCall(eventID int64, members []models.Member, records []models.Attendance) []models.Member {
	seen := make(map[int64]struct{})
	for _, r := range records {
		if r.EventID == eventID {
			seen[r.MemberID] = struct{}{}
		}
	}
	out := []models.Member{}
	for _, m := range activeSorted(members) {
		if _, ok := seen[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}

func activeSorted(members []models.Member) []models.Member {
	out := make([]models.Member, 0, len(members))
	for _, m := range members {
		if m.Status == models.MemberActive {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
