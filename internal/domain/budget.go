package domain

import (
	"sort"
	"time"
)

const DefaultSpendingType = "expense"

type BudgetEntry struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	SpendingType string    `json:"spending_type"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BudgetFields es la parte de un gasto nuevo que envía el cliente.
type BudgetFields struct {
	SpendingType string     `json:"spending_type"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Amount       float64    `json:"amount"`
	Date         *time.Time `json:"date"`
}

// BudgetPatch lleva una actualización parcial de un gasto.
type BudgetPatch struct {
	SpendingType Optional[string]    `json:"spending_type"`
	Category     Optional[string]    `json:"category"`
	Description  Optional[string]    `json:"description"`
	Amount       Optional[float64]   `json:"amount"`
	Date         Optional[time.Time] `json:"date"`
}

// Apply aplica el patch sobre b y devuelve el resultado.
func (p BudgetPatch) Apply(b BudgetEntry) BudgetEntry {
	if p.SpendingType.Set {
		b.SpendingType = p.SpendingType.Value
	}
	if p.Category.Set {
		b.Category = p.Category.Value
	}
	if p.Description.Set {
		b.Description = p.Description.Value
	}
	if p.Amount.Set {
		b.Amount = p.Amount.Value
	}
	if p.Date.Set {
		b.Date = p.Date.Value
	}
	return b
}

// BudgetSummary agrega los gastos de un usuario.
type BudgetSummary struct {
	Total          float64            `json:"total"`
	Count          int                `json:"count"`
	ByCategory     []CategoryTotal    `json:"by_category"`
	BySpendingType map[string]float64 `json:"by_spending_type"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summarize totaliza por categoría (mayor primero) y por tipo de gasto.
func Summarize(entries []BudgetEntry) BudgetSummary {
	summary := BudgetSummary{
		ByCategory:     []CategoryTotal{},
		BySpendingType: make(map[string]float64),
	}
	byCategory := make(map[string]float64)
	for _, e := range entries {
		summary.Total += e.Amount
		summary.Count++
		byCategory[e.Category] += e.Amount
		summary.BySpendingType[e.SpendingType] += e.Amount
	}
	for category, total := range byCategory {
		summary.ByCategory = append(summary.ByCategory, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		if summary.ByCategory[i].Total == summary.ByCategory[j].Total {
			return summary.ByCategory[i].Category < summary.ByCategory[j].Category
		}
		return summary.ByCategory[i].Total > summary.ByCategory[j].Total
	})
	return summary
}
