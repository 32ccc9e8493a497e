// internal/domain/product/importer.go
package product

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// importHeaders is the canonical column set for import, export and the
// downloadable template
var importHeaders = []string{
	"id", "name", "sku", "price", "discount_price", "stock", "categories",
	"description", "specs", "image_url", "image_urls", "is_active",
}

// headerSynonyms maps localized spreadsheet headers onto canonical fields.
// Vendors commonly hand over sheets with Chinese headers.
var headerSynonyms = map[string]string{
	"名稱": "name", "商品名稱": "name", "品名": "name",
	"貨號": "sku",
	"價格": "price", "售價": "price",
	"特價": "discount_price", "優惠價": "discount_price",
	"庫存": "stock", "數量": "stock",
	"分類": "categories", "類別": "categories",
	"描述": "description", "商品描述": "description",
	"規格": "specs", "商品規格": "specs",
	"上架": "is_active", "是否上架": "is_active",
}

// imageColumnNames are the column names scanned for gallery image URLs
var imageColumnNames = map[string]bool{
	"image_urls": true, "image_url": true, "image url": true,
	"images": true, "photo": true, "photos": true, "pic": true, "pics": true,
	"圖片": true, "圖片連結": true, "照片": true, "連結": true,
}

// RowError describes a single failed spreadsheet row
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a product import run
type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// ImportXLSX reads an .xlsx spreadsheet and creates or updates products.
// Bad rows are reported per row and do not abort the batch.
func (s *Service) ImportXLSX(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet has no data rows")
	}

	headers := rows[0]
	result := &ImportResult{}

	for i, cells := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header row

		row := buildRowMap(headers, cells)
		if isEmptyRow(row) {
			continue
		}

		created, err := s.importRow(row)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Error: err.Error()})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// buildRowMap pairs header cells with row cells, applying synonym and
// case-insensitive header mapping
func buildRowMap(headers, cells []string) map[string]string {
	raw := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			raw[strings.TrimSpace(h)] = strings.TrimSpace(cells[i])
		} else {
			raw[strings.TrimSpace(h)] = ""
		}
	}

	row := make(map[string]string, len(raw))
	for key, value := range raw {
		row[key] = value
	}

	// Localized headers fill missing canonical fields
	for alias, field := range headerSynonyms {
		if v, ok := raw[alias]; ok && v != "" && row[field] == "" {
			row[field] = v
		}
	}

	// Case-insensitive fallback for standard fields ('Price' -> 'price')
	canonical := make(map[string]bool, len(importHeaders))
	for _, h := range importHeaders {
		canonical[h] = true
	}
	for key, value := range raw {
		lower := strings.ToLower(key)
		if canonical[lower] && row[lower] == "" {
			row[lower] = value
		}
	}

	return row
}

func isEmptyRow(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// importRow validates and persists a single row. Returns true when a new
// product was created.
func (s *Service) importRow(row map[string]string) (bool, error) {
	name := row["name"]
	if name == "" {
		return false, fmt.Errorf("product name is required, please check the spreadsheet content")
	}

	priceRaw := row["price"]
	if priceRaw == "" {
		return false, fmt.Errorf("price is required, please check the spreadsheet content")
	}
	price, err := parseCents(priceRaw)
	if err != nil {
		return false, fmt.Errorf("invalid price %q", priceRaw)
	}

	var discountPrice *int64
	if raw := row["discount_price"]; raw != "" {
		v, err := parseCents(raw)
		if err != nil {
			return false, fmt.Errorf("invalid discount price %q", raw)
		}
		discountPrice = &v
	}

	stock := 0
	if raw := row["stock"]; raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return false, fmt.Errorf("invalid stock %q", raw)
		}
		stock = v
	}

	sku := row["sku"]
	if sku == "" {
		sku = GenerateSKU(name)
	}

	// Resolve the target product: rows carrying an id update that product,
	// otherwise match on SKU, otherwise create
	var target *Product
	if idRaw := row["id"]; idRaw != "" {
		id, err := strconv.ParseUint(idRaw, 10, 32)
		if err != nil {
			return false, fmt.Errorf("invalid id %q", idRaw)
		}
		var existing Product
		if res := s.db.Where("id = ?", uint(id)).First(&existing); res.Error == nil {
			target = &existing
		}
	}
	if target == nil {
		var existing Product
		if res := s.db.Where("sku = ?", sku).First(&existing); res.Error == nil {
			target = &existing
		}
	}

	// Reject SKUs that already belong to a different product
	var conflicts int64
	conflictQuery := s.db.Model(&Product{}).Where("sku = ?", sku)
	if target != nil {
		conflictQuery = conflictQuery.Where("id != ?", target.ID)
	}
	conflictQuery.Count(&conflicts)
	if conflicts > 0 {
		return false, fmt.Errorf("SKU %q already exists in another product, please ensure SKU is unique", sku)
	}

	imageURLs := collectImageURLs(row)

	mainImage := row["image_url"]
	if strings.Contains(mainImage, ",") {
		mainImage = strings.TrimSpace(strings.SplitN(mainImage, ",", 2)[0])
	}
	if mainImage == "" && len(imageURLs) > 0 {
		mainImage = imageURLs[0]
	}

	isActive := true
	if raw := row["is_active"]; raw != "" {
		isActive = parseBoolCell(raw)
	}

	created := false
	if target == nil {
		target = &Product{
			SKU:  sku,
			Slug: s.uniqueSlug(Slugify(name), 0),
		}
		created = true
	}

	target.SKU = sku
	target.Name = name
	target.Description = row["description"]
	target.Specs = row["specs"]
	target.Price = price
	target.DiscountPrice = discountPrice
	target.Stock = stock
	target.ImageURL = mainImage
	target.IsActive = isActive
	if target.Slug == "" {
		target.Slug = s.uniqueSlug(Slugify(name), target.ID)
	}

	if err := s.db.Save(target).Error; err != nil {
		return false, fmt.Errorf("failed to save product: %w", err)
	}

	if raw := row["categories"]; raw != "" {
		if err := s.attachCategoriesByName(target, raw); err != nil {
			return created, err
		}
	}

	if len(imageURLs) > 0 {
		if err := s.replaceImages(target, imageURLs); err != nil {
			return created, err
		}
	}

	return created, nil
}

// collectImageURLs gathers gallery URLs from every image-like column,
// normalizes separators and deduplicates while preserving order
func collectImageURLs(row map[string]string) []string {
	var parts []string
	if v := row["image_urls"]; v != "" {
		parts = append(parts, v)
	}
	for key, value := range row {
		lower := strings.ToLower(strings.TrimSpace(key))
		if lower != "image_urls" && imageColumnNames[lower] && value != "" && lower != "image_url" {
			parts = append(parts, value)
		}
	}

	full := strings.Join(parts, ",")
	// Full-width comma and enumeration comma show up in Chinese input
	full = strings.ReplaceAll(full, "，", ",")
	full = strings.ReplaceAll(full, "、", ",")

	seen := make(map[string]bool)
	var urls []string
	for _, u := range strings.Split(full, ",") {
		u = strings.TrimSpace(u)
		u = strings.ReplaceAll(u, "`", "")
		u = strings.ReplaceAll(u, "'", "")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// attachCategoriesByName resolves comma-separated category names, creating
// missing ones, and replaces the product's set
func (s *Service) attachCategoriesByName(product *Product, raw string) error {
	raw = strings.ReplaceAll(raw, "，", ",")

	var categories []Category
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var category Category
		res := s.db.Where("name = ?", name).First(&category)
		if res.Error != nil {
			if res.Error != gorm.ErrRecordNotFound {
				return fmt.Errorf("failed to look up category %q: %w", name, res.Error)
			}
			category = Category{
				Name:     name,
				Slug:     s.uniqueCategorySlug(name),
				IsActive: true,
			}
			if err := s.db.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create category %q: %w", name, err)
			}
		}
		categories = append(categories, category)
	}

	if err := s.db.Model(product).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("failed to set categories: %w", err)
	}
	return nil
}

func (s *Service) uniqueCategorySlug(name string) string {
	base := Slugify(name)
	if base == "" {
		base = "category"
	}
	candidate := base
	for i := 1; ; i++ {
		var count int64
		s.db.Model(&Category{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// replaceImages swaps the product's gallery for the imported URL list
func (s *Service) replaceImages(product *Product, urls []string) error {
	if err := s.db.Where("product_id = ?", product.ID).Delete(&ProductImage{}).Error; err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}
	for idx, u := range urls {
		image := ProductImage{
			ProductID: product.ID,
			URL:       u,
			SortOrder: idx,
		}
		if err := s.db.Create(&image).Error; err != nil {
			return fmt.Errorf("failed to create product image: %w", err)
		}
	}
	return nil
}

// ExportXLSX writes the full catalog as a spreadsheet using the import
// header set, so an export can be edited and re-imported
func (s *Service) ExportXLSX(w io.Writer) error {
	var products []Product
	if err := s.db.
		Preload("Categories").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := writeHeaderRow(f, sheet); err != nil {
		return err
	}

	for i, p := range products {
		var catNames []string
		for _, c := range p.Categories {
			catNames = append(catNames, c.Name)
		}

		var urls []string
		if p.ImageURL != "" {
			urls = append(urls, p.ImageURL)
		}
		for _, img := range p.Images {
			urls = append(urls, img.URL)
		}

		discount := ""
		if p.DiscountPrice != nil {
			discount = formatCents(*p.DiscountPrice)
		}

		cells := []interface{}{
			p.ID, p.Name, p.SKU, formatCents(p.Price), discount, p.Stock,
			strings.Join(catNames, ","), p.Description, p.Specs,
			p.ImageURL, strings.Join(urls, ","), p.IsActive,
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// TemplateXLSX writes an empty import template with one sample row
func (s *Service) TemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Product Template"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := writeHeaderRow(f, sheet); err != nil {
		return err
	}

	sample := []interface{}{
		"", "Sample Product", "SKU-SAMPLE-01", 100, 80, 50, "HP,Canon",
		"<p>Description...</p>", "<p>Specs...</p>", "",
		"https://example.com/img1.jpg,https://example.com/img2.jpg", true,
	}
	if err := setRow(f, sheet, 2, sample); err != nil {
		return err
	}

	return f.Write(w)
}

func writeHeaderRow(f *excelize.File, sheet string) error {
	cells := make([]interface{}, len(importHeaders))
	for i, h := range importHeaders {
		cells[i] = h
	}
	return setRow(f, sheet, 1, cells)
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// parseCents converts a spreadsheet price (whole currency units, possibly
// fractional) into cents
func parseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price")
	}
	return int64(math.Round(f * 100)), nil
}

func formatCents(cents int64) string {
	if cents%100 == 0 {
		return strconv.FormatInt(cents/100, 10)
	}
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

// parseBoolCell accepts common spreadsheet truthy spellings
func parseBoolCell(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "是", "上架":
		return true
	default:
		return false
	}
}
