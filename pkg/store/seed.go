package store

import (
	"context"
	"fmt"
	"time"

	"clubdash/models"
	"clubdash/pkg/club"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedDemo fills an empty database with the chapter's starter data: four
// members, three events around now, a few ledger lines and dues statuses.
// It does nothing when members already exist.
func SeedDemo(ctx context.Context, db *gorm.DB, now time.Time) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Member{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count members: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	today := club.Day(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	members := []models.Member{
		{ID: 1, ExternalCode: "12345", Name: "João da Silva", Phone: "(51) 99999-1111", Email: "joao@email.com", Status: models.MemberActive},
		{ID: 2, ExternalCode: "54321", Name: "Carlos Pereira", Phone: "(51) 98888-2222", Email: "carlos@email.com", Status: models.MemberActive},
		{ID: 3, ExternalCode: "67890", Name: "Pedro Almeida", Phone: "(51) 97777-3333", Email: "pedro@email.com", Status: models.MemberSenior},
		{ID: 4, ExternalCode: "09876", Name: "Lucas Souza", Phone: "(51) 96666-4444", Email: "lucas@email.com", Status: models.MemberActive},
	}
	events := []models.Event{
		{ID: 101, Date: today.AddDate(0, 0, -7), Title: "Reunião Ordinária", Description: "Discussão de projetos.", ColorTag: "#FF6347"},
		{ID: 102, Date: today.AddDate(0, 0, 5), Title: "Filantropia - Asilo", Description: "Visita e doação.", ColorTag: "#4682B4"},
		{ID: 103, Date: today.AddDate(0, 0, 12), Title: "Cerimônia Magna de Iniciação", Description: "Iniciação de novos membros.", ColorTag: "#32CD32"},
	}
	txs := []models.Transaction{
		{ID: 1, Date: monthStart, Description: "Taxa mensal - João", Kind: models.Inflow, Amount: decimal.RequireFromString("20.00")},
		{ID: 2, Date: monthStart.AddDate(0, 0, 4), Description: "Compra de materiais", Kind: models.Outflow, Amount: decimal.RequireFromString("-15.50")},
		{ID: 3, Date: monthStart.AddDate(0, 0, 14), Description: "Taxa mensal - Carlos", Kind: models.Inflow, Amount: decimal.RequireFromString("20.00")},
	}
	dues := []models.DuesStatus{
		{MemberID: 1, Status: models.Paid, UpdatedAt: now},
		{MemberID: 2, Status: models.Unpaid, UpdatedAt: now},
		{MemberID: 4, Status: models.Paid, UpdatedAt: now},
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rows := range []any{&members, &events, &txs, &dues} {
			if err := tx.Create(rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed demo data: %w", err)
	}
	return true, nil
}
