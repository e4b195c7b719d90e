package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"clubdash/models"
	"clubdash/pkg/club"
	"clubdash/pkg/ocr"
	"clubdash/pkg/store"
	"clubdash/process/receipts"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxReceiptBytes = 5 * 1024 * 1024

type transactionView struct {
	ID            int64                  `json:"id"`
	Date          string                 `json:"date"`
	DateDisplay   string                 `json:"date_display"`
	Description   string                 `json:"description"`
	Kind          models.TransactionKind `json:"kind"`
	Amount        string                 `json:"amount"`
	AmountDisplay string                 `json:"amount_display"`
}

func viewTransaction(t models.Transaction) transactionView {
	return transactionView{
		ID:            t.ID,
		Date:          t.Date.Format(dateLayout),
		DateDisplay:   club.FormatDate(t.Date),
		Description:   t.Description,
		Kind:          t.Kind,
		Amount:        t.Amount.StringFixed(2),
		AmountDisplay: club.FormatBRL(t.Amount),
	}
}

func (s *server) listTransactionsHandler(c *gin.Context) {
	txs, err := s.store.Transactions(c.Request.Context())
	if err != nil {
		s.readFailed(c, err, gin.H{"transactions": []transactionView{}, "balance": "0.00", "balance_display": club.FormatBRL(decimal.Zero)})
		return
	}
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, viewTransaction(t))
	}
	balance := club.CurrentBalance(txs)
	c.JSON(http.StatusOK, gin.H{
		"transactions":    out,
		"balance":         balance.StringFixed(2),
		"balance_display": club.FormatBRL(balance),
	})
}

// createTransactionHandler takes the amount as a positive value; the kind
// decides the sign stored on the ledger.
func (s *server) createTransactionHandler(c *gin.Context) {
	var req struct {
		Date        string          `json:"date" binding:"required,isodate"`
		Description string          `json:"description" binding:"required"`
		Kind        string          `json:"kind" binding:"required,oneof=Inflow Outflow"`
		Amount      decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := club.SignedAmount(models.TransactionKind(req.Kind), req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := models.Transaction{
		Date:        parseDate(req.Date),
		Description: req.Description,
		Kind:        models.TransactionKind(req.Kind),
		Amount:      amount,
	}
	if err := s.store.CreateTransaction(c.Request.Context(), &t); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewTransaction(t))
}

func (s *server) deleteTransactionHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTransaction(c.Request.Context(), id); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}

// ---- dues ----

// duesHandler lists every Active member with its payment status; members
// without a recorded status show as Unpaid.
func (s *server) duesHandler(c *gin.Context) {
	ctx := c.Request.Context()
	members, err := s.store.Members(ctx)
	if err != nil {
		s.readFailed(c, err, gin.H{"dues": []club.DuesLine{}})
		return
	}
	dues, err := s.store.DuesStatuses(ctx)
	if err != nil {
		s.readFailed(c, err, gin.H{"dues": []club.DuesLine{}})
		return
	}
	lines := club.DuesReconciliation(members, dues)
	paid := 0
	for _, l := range lines {
		if l.Status == models.Paid {
			paid++
		}
	}
	c.JSON(http.StatusOK, gin.H{"dues": lines, "paid": paid, "unpaid": len(lines) - paid})
}

func (s *server) setDuesHandler(c *gin.Context) {
	memberID, ok := idParam(c, "memberId")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=Paid Unpaid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetDuesStatus(c.Request.Context(), memberID, models.PaymentStatus(req.Status)); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "status": req.Status})
}

// ---- projection ----

type projectionRowView struct {
	Month          string `json:"month"`
	Label          string `json:"label"`
	OpeningBalance string `json:"opening_balance"`
	FixedIncome    string `json:"fixed_income"`
	ExtraInflow    string `json:"extra_inflow"`
	ExtraOutflow   string `json:"extra_outflow"`
	ClosingBalance string `json:"closing_balance"`
	Display        struct {
		OpeningBalance string `json:"opening_balance"`
		FixedIncome    string `json:"fixed_income"`
		ExtraInflow    string `json:"extra_inflow"`
		ExtraOutflow   string `json:"extra_outflow"`
		ClosingBalance string `json:"closing_balance"`
	} `json:"display"`
}

func viewProjectionRow(r club.ProjectionRow) projectionRowView {
	v := projectionRowView{
		Month:          r.Month.String(),
		Label:          club.MonthName(r.Month.Month),
		OpeningBalance: r.OpeningBalance.StringFixed(2),
		FixedIncome:    r.FixedIncome.StringFixed(2),
		ExtraInflow:    r.ExtraInflow.StringFixed(2),
		ExtraOutflow:   r.ExtraOutflow.StringFixed(2),
		ClosingBalance: r.ClosingBalance.StringFixed(2),
	}
	v.Display.OpeningBalance = club.FormatBRL(r.OpeningBalance)
	v.Display.FixedIncome = club.FormatBRL(r.FixedIncome)
	v.Display.ExtraInflow = club.FormatBRL(r.ExtraInflow)
	v.Display.ExtraOutflow = club.FormatBRL(r.ExtraOutflow)
	v.Display.ClosingBalance = club.FormatBRL(r.ClosingBalance)
	return v
}

// projectionHandler forecasts the balance from the current month through
// December using the ledger balance, the dues of Active members and the
// session's adjustments.
func (s *server) projectionHandler(c *gin.Context) {
	ctx := c.Request.Context()
	empty := gin.H{"rows": []projectionRowView{}}
	txs, err := s.store.Transactions(ctx)
	if err != nil {
		s.readFailed(c, err, empty)
		return
	}
	members, err := s.store.Members(ctx)
	if err != nil {
		s.readFailed(c, err, empty)
		return
	}
	body := gin.H{}
	adj, err := s.adj.Get(ctx, c.GetString("sid"))
	if err != nil {
		s.log.Warn("load adjustments", "err", err)
		body["notice"] = "Ajustes da simulação indisponíveis; projeção sem ajustes."
		adj = nil
	}
	balance := club.CurrentBalance(txs)
	income := club.FixedMonthlyIncome(members, s.cfg.DuesRate)
	rows := club.Project(s.now(), balance, income, adj)
	s.metrics.Projection()

	views := make([]projectionRowView, 0, len(rows))
	for _, r := range rows {
		views = append(views, viewProjectionRow(r))
	}
	body["rows"] = views
	body["current_balance"] = balance.StringFixed(2)
	body["fixed_monthly_income"] = income.StringFixed(2)
	body["dues_rate"] = s.cfg.DuesRate.StringFixed(2)
	c.JSON(http.StatusOK, body)
}

func (s *server) setAdjustmentHandler(c *gin.Context) {
	var req struct {
		Month        string          `json:"month" binding:"required"`
		ExtraInflow  decimal.Decimal `json:"extra_inflow"`
		ExtraOutflow decimal.Decimal `json:"extra_outflow"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := club.ParseMonthKey(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !club.InWindow(s.now(), key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month outside the projection window"})
		return
	}
	a := club.Adjustment{ExtraInflow: req.ExtraInflow, ExtraOutflow: req.ExtraOutflow}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.adj.Set(c.Request.Context(), c.GetString("sid"), key, a); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": key.String(), "extra_inflow": a.ExtraInflow.StringFixed(2), "extra_outflow": a.ExtraOutflow.StringFixed(2)})
}

func (s *server) resetAdjustmentsHandler(c *gin.Context) {
	if err := s.adj.Reset(c.Request.Context(), c.GetString("sid")); err != nil {
		s.writeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "adjustments cleared"})
}

// ---- receipts ----

// uploadReceiptHandler stores the image and runs it through OCR. A readable
// amount becomes an Outflow transaction; otherwise the receipt is kept as
// failed for manual entry.
func (s *server) uploadReceiptHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxReceiptBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	name := filepath.Base(file.Filename)
	if !ocr.IsImage(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}
	// a linked receipt keeps its file; refuse before anything is written
	existing, err := s.store.ReceiptByFileName(c.Request.Context(), name)
	switch {
	case err == nil && existing.TransactionID != nil:
		s.metrics.Receipt(string(receipts.OutcomeDuplicate))
		c.JSON(http.StatusConflict, gin.H{"error": "receipt already processed", "receipt": existing, "outcome": receipts.OutcomeDuplicate})
		return
	case err != nil && !errors.Is(err, store.ErrNotFound):
		s.writeFailed(c, err)
		return
	}
	dir := s.receiptDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	fullPath := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	r, outcome, err := s.receipts.Ingest(c.Request.Context(), fullPath, c.GetString("username"))
	if err != nil {
		s.writeFailed(c, err)
		return
	}
	status := http.StatusOK
	if outcome == receipts.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"receipt": r, "outcome": outcome, "transaction_id": r.TransactionID})
}

func (s *server) listReceiptsHandler(c *gin.Context) {
	list, err := s.store.Receipts(c.Request.Context())
	if err != nil {
		s.readFailed(c, err, gin.H{"receipts": []models.Receipt{}})
		return
	}
	if list == nil {
		list = []models.Receipt{}
	}
	c.JSON(http.StatusOK, gin.H{"receipts": list})
}
