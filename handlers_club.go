package main

import (
	"net/http"
	"time"

	"clubdash/models"
	"clubdash/pkg/club"

	"github.com/gin-gonic/gin"
)

type memberRequest struct {
	ExternalCode string `json:"external_code"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Status       string `json:"status" binding:"required,oneof=Active Senior"`
}

func (r memberRequest) member(id int64) models.Member {
	return models.Member{
		ID:           id,
		ExternalCode: r.ExternalCode,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Status:       models.MemberStatus(r.Status),
	}
}

type eventRequest struct {
	Date        string `json:"date" binding:"required,isodate"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ColorTag    string `json:"color_tag" binding:"omitempty,hexcolor"`
}

func (r eventRequest) event(id int64) models.Event {
	return models.Event{ID: id, Date: parseDate(r.Date), Title: r.Title, Description: r.Description, ColorTag: r.ColorTag}
}

type eventView struct {
	models.Event
	DateDisplay string `json:"date_display"`
}

func viewEvent(e models.Event) eventView {
	return eventView{Event: e, DateDisplay: club.FormatDate(e.Date)}
}

// overviewHandler serves the dashboard header: active member count, current
// balance, next upcoming event and the time of the last change.
func (s *server) overviewHandler(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{
		"active_members":  0,
		"balance":         "0.00",
		"balance_display": club.FormatBRL(club.CurrentBalance(nil)),
		"next_event":      nil,
	}
	last := s.store.LastUpdate()
	body["last_update"] = last.UTC().Format(time.RFC3339)
	body["last_update_display"] = last.Format("02/01/2006 15:04")

	members, err := s.store.Members(ctx)
	if err != nil {
		s.readFailed(c, err, body)
		return
	}
	txs, err := s.store.Transactions(ctx)
	if err != nil {
		s.readFailed(c, err, body)
		return
	}
	events, err := s.store.Events(ctx)
	if err != nil {
		s.readFailed(c, err, body)
		return
	}
	balance := club.CurrentBalance(txs)
	body["active_members"] = club.ActiveMemberCount(members)
	body["balance"] = balance.StringFixed(2)
	body["balance_display"] = club.FormatBRL(balance)
	if e, ok := club.NextUpcomingEvent(events, s.now()); ok {
		body["next_event"] = viewEvent(e)
	}
	c.JSON(http.StatusOK, body)
}

// ---- members ----

func (s *server) listMembersHandler(c *gin.Context) {
	members, err := s.store.Members(c.Request.Context())
	if err != nil {
		s.readFailed(c, err, gin.H{"members": []models.Member{}})
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *server) getMemberHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := s.store.Member(c.Request.Context(), id)
	if err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *server) createMemberHandler(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := req.member(0)
	if err := s.store.CreateMember(c.Request.Context(), &m); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *server) updateMemberHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := req.member(id)
	if err := s.store.UpdateMember(c.Request.Context(), &m); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *server) deleteMemberHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteMember(c.Request.Context(), id); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member deleted"})
}

// ---- events ----

func (s *server) listEventsHandler(c *gin.Context) {
	events, err := s.store.Events(c.Request.Context())
	if err != nil {
		s.readFailed(c, err, gin.H{"events": []eventView{}})
		return
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, viewEvent(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (s *server) getEventHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	e, err := s.store.Event(c.Request.Context(), id)
	if err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewEvent(e))
}

func (s *server) createEventHandler(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := req.event(0)
	if err := s.store.CreateEvent(c.Request.Context(), &e); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewEvent(e))
}

func (s *server) updateEventHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := req.event(id)
	if err := s.store.UpdateEvent(c.Request.Context(), &e); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewEvent(e))
}

func (s *server) deleteEventHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteEvent(c.Request.Context(), id); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// ---- attendance ----

func (s *server) attendanceHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	records, err := s.store.Attendance(ctx, id)
	if err != nil {
		s.readFailed(c, err, gin.H{"event_id": id, "attendance": []club.AttendanceLine{}})
		return
	}
	members, err := s.store.Members(ctx)
	if err != nil {
		s.readFailed(c, err, gin.H{"event_id": id, "attendance": []club.AttendanceLine{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": id, "attendance": club.AttendanceReconciliation(id, records, members)})
}

// rollCallHandler lists the Active members not yet registered for the event.
func (s *server) rollCallHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	records, err := s.store.Attendance(ctx, id)
	if err != nil {
		s.readFailed(c, err, gin.H{"event_id": id, "pending": []models.Member{}})
		return
	}
	members, err := s.store.Members(ctx)
	if err != nil {
		s.readFailed(c, err, gin.H{"event_id": id, "pending": []models.Member{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": id, "pending": club.PendingRollCall(id, members, records)})
}

// recordAttendanceHandler stores a roll call. Members already registered for
// the event are skipped.
func (s *server) recordAttendanceHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Presence map[int64]bool `json:"presence" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.store.RecordAttendance(c.Request.Context(), id, req.Presence)
	if err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": id, "inserted": n})
}

func (s *server) deleteAttendanceHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := idParam(c, "memberId")
	if !ok {
		return
	}
	if err := s.store.DeleteAttendance(c.Request.Context(), id, memberID); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attendance deleted"})
}
