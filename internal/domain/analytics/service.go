// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/geoip"
	"gorm.io/gorm"
)

// Service handles visit tracking and reporting
type Service struct {
	db       *gorm.DB
	config   *config.Config
	resolver *geoip.Resolver
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config, resolver *geoip.Resolver) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		resolver: resolver,
	}
}

// VisitorStats is the visitor dashboard payload
type VisitorStats struct {
	TotalVisits    int64            `json:"total_visits"`
	UniqueVisitors int64            `json:"unique_visitors"`
	VisitsByDay    []TimeSeriesData `json:"visits_by_day"`
	TopPaths       []PathData       `json:"top_paths"`
	ByCountry      []BreakdownData  `json:"by_country"`
	ByDevice       []BreakdownData  `json:"by_device"`
	ByBrowser      []BreakdownData  `json:"by_browser"`
}

// SalesStats is the sales dashboard payload. Only orders in a revenue
// status are counted.
type SalesStats struct {
	TotalRevenue  int64              `json:"total_revenue"` // In cents
	TotalOrders   int64              `json:"total_orders"`
	AvgOrderValue int64              `json:"avg_order_value"` // In cents
	RevenueByDay  []TimeSeriesData   `json:"revenue_by_day"`
	TopProducts   []ProductSalesData `json:"top_products"`
	TopCategories []CategoryData     `json:"top_categories"`
}

// TimeSeriesData is one point on a daily series
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count,omitempty"`
}

// PathData is one row of the top-pages table
type PathData struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// BreakdownData is one slice of a country/device/browser breakdown
type BreakdownData struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ProductSalesData is one row of the top-products table
type ProductSalesData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	TotalSold   int64  `json:"total_sold"`
	Revenue     int64  `json:"revenue"`
}

// CategoryData is one row of the category revenue table
type CategoryData struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Revenue      int64  `json:"revenue"`
	TotalSold    int64  `json:"total_sold"`
}

// salesStatusList is the SQL-ready slice of revenue statuses
var salesStatusList = []string{"paid", "fulfilling", "partially_shipped", "shipped", "completed"}

// Record stores one page view. Intended to be called from a goroutine
// after the response is written; it recovers from panics and logs
// failures instead of propagating them, so tracking can never break a
// request.
func (s *Service) Record(ctx context.Context, path, ip, userAgent, referer string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Visit recording panicked")
		}
	}()

	loc := s.resolver.Lookup(ctx, ip)
	visit := Visit{
		Path:        truncate(path, 500),
		IPAddress:   ip,
		UserAgent:   truncate(userAgent, 500),
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		City:        loc.City,
		Device:      ClassifyDevice(userAgent),
		Browser:     ClassifyBrowser(userAgent),
		OS:          ClassifyOS(userAgent),
		Referer:     truncate(referer, 500),
	}

	if err := s.db.WithContext(ctx).Create(&visit).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record visit")
	}
}

// VisitListResponse is a paginated page of raw visits
type VisitListResponse struct {
	Visits     []Visit    `json:"visits"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListVisits returns raw visit rows, newest first
func (s *Service) ListVisits(page, limit int) (*VisitListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := s.db.Model(&Visit{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}

	var visits []Visit
	offset := (page - 1) * limit
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch visits: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &VisitListResponse{
		Visits: visits,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// GetVisitorStats builds the visitor dashboard for the last N days
func (s *Service) GetVisitorStats(days int) (*VisitorStats, error) {
	if days <= 0 {
		days = 30
	}
	startDate := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	stats := &VisitorStats{}

	s.db.Raw("SELECT COUNT(*) FROM visits WHERE created_at >= ?", startDate).Scan(&stats.TotalVisits)
	s.db.Raw("SELECT COUNT(DISTINCT ip_address) FROM visits WHERE created_at >= ?", startDate).Scan(&stats.UniqueVisitors)

	rows, err := s.db.Raw(`
		SELECT DATE(created_at) as date, COUNT(*) as count
		FROM visits
		WHERE created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY date
	`, startDate).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily visits: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]int64)
	for rows.Next() {
		var date time.Time
		var count int64
		if err := rows.Scan(&date, &count); err != nil {
			continue
		}
		byDay[date.Format("2006-01-02")] = count
	}
	stats.VisitsByDay = FillDailySeries(byDay, startDate, days)

	pathRows, err := s.db.Raw(`
		SELECT path, COUNT(*) as count
		FROM visits
		WHERE created_at >= ?
		GROUP BY path
		ORDER BY count DESC
		LIMIT 10
	`, startDate).Rows()
	if err == nil {
		defer pathRows.Close()
		for pathRows.Next() {
			var p PathData
			if err := pathRows.Scan(&p.Path, &p.Count); err != nil {
				continue
			}
			stats.TopPaths = append(stats.TopPaths, p)
		}
	}

	var loadErr error
	stats.ByCountry, loadErr = s.breakdown("country", startDate)
	if loadErr != nil {
		return nil, loadErr
	}
	stats.ByDevice, loadErr = s.breakdown("device", startDate)
	if loadErr != nil {
		return nil, loadErr
	}
	stats.ByBrowser, loadErr = s.breakdown("browser", startDate)
	if loadErr != nil {
		return nil, loadErr
	}

	return stats, nil
}

// breakdown groups visits by a whitelisted column
func (s *Service) breakdown(column string, startDate time.Time) ([]BreakdownData, error) {
	switch column {
	case "country", "device", "browser", "os":
	default:
		return nil, fmt.Errorf("invalid breakdown column: %s", column)
	}

	rows, err := s.db.Raw(fmt.Sprintf(`
		SELECT COALESCE(NULLIF(%s, ''), 'Unknown') as label, COUNT(*) as count
		FROM visits
		WHERE created_at >= ?
		GROUP BY label
		ORDER BY count DESC
		LIMIT 10
	`, column), startDate).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s breakdown: %w", column, err)
	}
	defer rows.Close()

	var result []BreakdownData
	for rows.Next() {
		var b BreakdownData
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// GetSalesStats builds the sales dashboard for the last N days. When
// productID is non-zero the series and totals are restricted to orders
// containing that product.
func (s *Service) GetSalesStats(days int, productID uint) (*SalesStats, error) {
	if days <= 0 {
		days = 30
	}
	startDate := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	stats := &SalesStats{}

	if productID > 0 {
		s.db.Raw(`
			SELECT COALESCE(SUM(oi.price * oi.quantity), 0), COUNT(DISTINCT o.id)
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.created_at >= ? AND o.status IN ? AND oi.product_id = ?
		`, startDate, salesStatusList, productID).Row().Scan(&stats.TotalRevenue, &stats.TotalOrders)
	} else {
		s.db.Raw(`
			SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
			FROM orders
			WHERE created_at >= ? AND status IN ?
		`, startDate, salesStatusList).Row().Scan(&stats.TotalRevenue, &stats.TotalOrders)
	}

	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / stats.TotalOrders
	}

	var rows *gorm.DB
	if productID > 0 {
		rows = s.db.Raw(`
			SELECT DATE(o.created_at) as date, COALESCE(SUM(oi.price * oi.quantity), 0) as value, COUNT(DISTINCT o.id) as count
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.created_at >= ? AND o.status IN ? AND oi.product_id = ?
			GROUP BY DATE(o.created_at)
			ORDER BY date
		`, startDate, salesStatusList, productID)
	} else {
		rows = s.db.Raw(`
			SELECT DATE(created_at) as date, COALESCE(SUM(total_amount), 0) as value, COUNT(*) as count
			FROM orders
			WHERE created_at >= ? AND status IN ?
			GROUP BY DATE(created_at)
			ORDER BY date
		`, startDate, salesStatusList)
	}

	dailyRows, err := rows.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}
	defer dailyRows.Close()

	byDay := make(map[string]int64)
	counts := make(map[string]int64)
	for dailyRows.Next() {
		var date time.Time
		var value, count int64
		if err := dailyRows.Scan(&date, &value, &count); err != nil {
			continue
		}
		key := date.Format("2006-01-02")
		byDay[key] = value
		counts[key] = count
	}
	stats.RevenueByDay = FillDailySeries(byDay, startDate, days)
	for i := range stats.RevenueByDay {
		stats.RevenueByDay[i].Count = counts[stats.RevenueByDay[i].Date]
	}

	productRows, err := s.db.Raw(`
		SELECT oi.product_id, oi.product_name, oi.sku,
			COALESCE(SUM(oi.quantity), 0) as total_sold,
			COALESCE(SUM(oi.price * oi.quantity), 0) as revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ? AND o.status IN ?
		GROUP BY oi.product_id, oi.product_name, oi.sku
		ORDER BY revenue DESC
		LIMIT 10
	`, startDate, salesStatusList).Rows()
	if err == nil {
		defer productRows.Close()
		for productRows.Next() {
			var p ProductSalesData
			if err := productRows.Scan(&p.ProductID, &p.ProductName, &p.SKU, &p.TotalSold, &p.Revenue); err != nil {
				continue
			}
			stats.TopProducts = append(stats.TopProducts, p)
		}
	}

	categoryRows, err := s.db.Raw(`
		SELECT c.id, c.name,
			COALESCE(SUM(oi.price * oi.quantity), 0) as revenue,
			COALESCE(SUM(oi.quantity), 0) as total_sold
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		JOIN order_items oi ON oi.product_id = pc.product_id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ? AND o.status IN ?
		GROUP BY c.id, c.name
		ORDER BY revenue DESC
		LIMIT 10
	`, startDate, salesStatusList).Rows()
	if err == nil {
		defer categoryRows.Close()
		for categoryRows.Next() {
			var c CategoryData
			if err := categoryRows.Scan(&c.CategoryID, &c.CategoryName, &c.Revenue, &c.TotalSold); err != nil {
				continue
			}
			stats.TopCategories = append(stats.TopCategories, c)
		}
	}

	return stats, nil
}

// ExportSalesCSV writes the daily revenue series as CSV
func (s *Service) ExportSalesCSV(w io.Writer, days int, productID uint) error {
	stats, err := s.GetSalesStats(days, productID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "orders", "revenue_cents"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, point := range stats.RevenueByDay {
		record := []string{
			point.Date,
			strconv.FormatInt(point.Count, 10),
			strconv.FormatInt(point.Value, 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// FillDailySeries expands a sparse date->value map into a dense series of
// exactly `days` points starting at startDate, zero-filling missing days
func FillDailySeries(byDay map[string]int64, startDate time.Time, days int) []TimeSeriesData {
	series := make([]TimeSeriesData, 0, days)
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, TimeSeriesData{Date: date, Value: byDay[date]})
	}
	return series
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so a multibyte character is never split
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
