package service

import (
	"context"
	"fmt"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CashflowDataPoint struct {
	Period        string `json:"period"`
	TotalReceipts string `json:"total_receipts"`
	TotalPayments string `json:"total_payments"`
	Net           string `json:"net"`
}

type CashflowFilter struct {
	GroupBy   string // week, month, quarter, year
	StartDate string // RFC3339
	EndDate   string // RFC3339
	SafeID    string // optional
}

type OverviewResponse struct {
	UnitCounts          map[string]int64 `json:"unit_counts"`
	ActiveContracts     int64            `json:"active_contracts"`
	TotalContracted     string           `json:"total_contracted"`
	TotalCollected      string           `json:"total_collected"`
	TotalOutstanding    string           `json:"total_outstanding"`
	OverdueInstallments int64            `json:"overdue_installments"`
	TotalSafeBalance    string           `json:"total_safe_balance"`
}

// --- Interface ---

type StatisticsService interface {
	GetCashflowStatistics(ctx context.Context, filter CashflowFilter) ([]CashflowDataPoint, error)
	GetOverview(ctx context.Context) (OverviewResponse, error)
}

type statisticsService struct {
	db              *gorm.DB
	unitRepo        repository.UnitRepository
	installmentRepo repository.InstallmentRepository
}

func NewStatisticsService(db *gorm.DB, unitRepo repository.UnitRepository, installmentRepo repository.InstallmentRepository) StatisticsService {
	return &statisticsService{db: db, unitRepo: unitRepo, installmentRepo: installmentRepo}
}

// --- Implementation ---

// GetCashflowStatistics buckets non-voided vouchers into time periods.
func (s *statisticsService) GetCashflowStatistics(ctx context.Context, filter CashflowFilter) ([]CashflowDataPoint, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case "week", "month", "quarter", "year":
		// valid
	default:
		groupBy = "month"
	}

	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, v.date), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(CASE WHEN v.type = $4 THEN v.amount ELSE 0 END), 0) AS total_receipts,
			COALESCE(SUM(CASE WHEN v.type = $5 THEN v.amount ELSE 0 END), 0) AS total_payments
		FROM vouchers v
		WHERE v.voided_at IS NULL
		  AND v.date >= $2::timestamptz
		  AND v.date <= $3::timestamptz
		  AND ($6 = '' OR v.safe_id::text = $6)
		GROUP BY DATE_TRUNC($1, v.date)
		ORDER BY period
	`

	type rawResult struct {
		Period        string  `gorm:"column:period"`
		TotalReceipts float64 `gorm:"column:total_receipts"`
		TotalPayments float64 `gorm:"column:total_payments"`
	}

	var rows []rawResult
	if err := s.db.WithContext(ctx).Raw(query,
		groupBy,
		filter.StartDate,
		filter.EndDate,
		model.VoucherReceipt,
		model.VoucherPayment,
		filter.SafeID,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query cashflow statistics: %w", err)
	}

	result := make([]CashflowDataPoint, 0, len(rows))
	for _, r := range rows {
		result = append(result, CashflowDataPoint{
			Period:        r.Period,
			TotalReceipts: fmt.Sprintf("%.2f", r.TotalReceipts),
			TotalPayments: fmt.Sprintf("%.2f", r.TotalPayments),
			Net:           fmt.Sprintf("%.2f", r.TotalReceipts-r.TotalPayments),
		})
	}

	return result, nil
}

// GetOverview aggregates the dashboard headline numbers.
func (s *statisticsService) GetOverview(ctx context.Context) (OverviewResponse, error) {
	var response OverviewResponse

	unitCounts, err := s.unitRepo.CountByStatus(ctx)
	if err != nil {
		return response, fmt.Errorf("failed to count units: %w", err)
	}
	response.UnitCounts = unitCounts

	var activeContracts int64
	if err := s.db.WithContext(ctx).Model(&model.Contract{}).Count(&activeContracts).Error; err != nil {
		return response, fmt.Errorf("failed to count contracts: %w", err)
	}
	response.ActiveContracts = activeContracts

	// Sums come back as text so decimal parsing keeps exact cents.
	var contracted struct {
		Value *string `gorm:"column:value"`
	}
	if err := s.db.WithContext(ctx).Model(&model.Contract{}).
		Select("CAST(SUM(total_price) AS TEXT) as value").
		Scan(&contracted).Error; err != nil {
		return response, fmt.Errorf("failed to sum contracts: %w", err)
	}
	totalContracted := decimal.Zero
	if contracted.Value != nil {
		totalContracted, err = decimal.NewFromString(*contracted.Value)
		if err != nil {
			return response, fmt.Errorf("failed to parse contracted sum: %w", err)
		}
	}
	response.TotalContracted = totalContracted.StringFixed(2)

	var collected struct {
		Value *string `gorm:"column:value"`
	}
	if err := s.db.WithContext(ctx).Model(&model.Voucher{}).
		Where("type = ? AND voided_at IS NULL AND reference_type IN ?",
			model.VoucherReceipt, []string{model.RefContract, model.RefInstallment}).
		Select("CAST(SUM(amount) AS TEXT) as value").
		Scan(&collected).Error; err != nil {
		return response, fmt.Errorf("failed to sum receipts: %w", err)
	}
	totalCollected := decimal.Zero
	if collected.Value != nil {
		totalCollected, err = decimal.NewFromString(*collected.Value)
		if err != nil {
			return response, fmt.Errorf("failed to parse collected sum: %w", err)
		}
	}
	response.TotalCollected = totalCollected.StringFixed(2)

	outstanding := totalContracted.Sub(totalCollected)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	response.TotalOutstanding = outstanding.StringFixed(2)

	overdue, err := s.installmentRepo.CountOverdue(ctx)
	if err != nil {
		return response, fmt.Errorf("failed to count overdue installments: %w", err)
	}
	response.OverdueInstallments = overdue

	var safeBalance struct {
		Value *string `gorm:"column:value"`
	}
	if err := s.db.WithContext(ctx).Model(&model.Safe{}).
		Select("CAST(SUM(balance) AS TEXT) as value").
		Scan(&safeBalance).Error; err != nil {
		return response, fmt.Errorf("failed to sum safe balances: %w", err)
	}
	totalBalance := decimal.Zero
	if safeBalance.Value != nil {
		totalBalance, err = decimal.NewFromString(*safeBalance.Value)
		if err != nil {
			return response, fmt.Errorf("failed to parse safe balance sum: %w", err)
		}
	}
	response.TotalSafeBalance = totalBalance.StringFixed(2)

	return response, nil
}
