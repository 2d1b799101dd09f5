// Package importer provides CSV and Excel import of order exports. It
// supports automatic delimiter detection, case-insensitive header
// recognition in Portuguese and English, and normalizes each row into a
// product line.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Lines    []model.ProductLine
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced lines without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Lines) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Client          int
	Order           int
	Product         int
	Description     int
	TypeDescription int
	Quantity        int
	Width           int
	Height          int
	Weight          int
	Sequence        int
	City            int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"client":           {"cliente", "client", "customer"},
	"order":            {"pedido cliente", "pedido", "order"},
	"product":          {"produto", "product"},
	"description":      {"produto descrição", "produto descricao", "description", "desc"},
	"type_description": {"tipo produto descrição", "tipo produto descricao", "type description"},
	"quantity":         {"qtde", "qtd", "quantidade", "quantity", "qty"},
	"width":            {"largura", "width", "w"},
	"height":           {"altura", "height", "h"},
	"weight":           {"peso total", "peso", "weight", "total weight"},
	"sequence":         {"sequência", "sequencia", "seq", "sequence"},
	"city":             {"cidade", "cidade/uf", "cidade_uf", "city"},
}

// clientPattern splits "1234 – Name" and "1234 - Name" client cells.
var clientPattern = regexp.MustCompile(`^(\d+)\s*[–-]\s*(.+)`)

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries semicolon, comma, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{';', ',', '\t', '|'}
	bestDelimiter := ';'
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns false if no cell of the row is a known header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Client:          -1,
		Order:           -1,
		Product:         -1,
		Description:     -1,
		TypeDescription: -1,
		Quantity:        -1,
		Width:           -1,
		Height:          -1,
		Weight:          -1,
		Sequence:        -1,
		City:            -1,
	}
	roles := map[string]*int{
		"client":           &mapping.Client,
		"order":            &mapping.Order,
		"product":          &mapping.Product,
		"description":      &mapping.Description,
		"type_description": &mapping.TypeDescription,
		"quantity":         &mapping.Quantity,
		"width":            &mapping.Width,
		"height":           &mapping.Height,
		"weight":           &mapping.Weight,
		"sequence":         &mapping.Sequence,
		"city":             &mapping.City,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if idx := roles[role]; *idx == -1 {
						*idx = i
					}
				}
			}
		}
	}
	return mapping, isHeader
}

// ParseClient splits a client cell into its numeric id and name. Cells
// without a leading id use the whole text for both.
func ParseClient(cell string) (id, name string) {
	cell = strings.TrimSpace(cell)
	if m := clientPattern.FindStringSubmatch(cell); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return cell, cell
}

// NormalizeWeight parses a weight cell in kilograms. Values written without
// a decimal separator are exported in grams.
func NormalizeWeight(s string) (float64, error) {
	s = strings.TrimSpace(s)
	w, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if strings.ContainsAny(s, ".,") {
		return w, nil
	}
	return w / 1000, nil
}

// parseNumber accepts both decimal separators.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a ProductLine from a row using the given column mapping.
// Returns the line, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.ProductLine, string, string) {
	clientCell := getCell(row, mapping.Client)
	if clientCell == "" {
		return model.ProductLine{}, fmt.Sprintf("%s: Missing client", rowLabel), ""
	}
	id, name := ParseClient(clientCell)

	product := getCell(row, mapping.Product)
	extra := getCell(row, mapping.Description)
	if extra == "" {
		extra = getCell(row, mapping.TypeDescription)
	}
	if extra != "" {
		product = strings.TrimSpace(product + " " + extra)
	}

	qtyStr := getCell(row, mapping.Quantity)
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.ProductLine{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
	}

	widthStr := getCell(row, mapping.Width)
	width, err := parseNumber(widthStr)
	if err != nil {
		return model.ProductLine{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), ""
	}

	heightStr := getCell(row, mapping.Height)
	height, err := parseNumber(heightStr)
	if err != nil {
		return model.ProductLine{}, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), ""
	}

	weightStr := getCell(row, mapping.Weight)
	weight, err := NormalizeWeight(weightStr)
	if err != nil {
		return model.ProductLine{}, fmt.Sprintf("%s: Invalid weight '%s'", rowLabel, weightStr), ""
	}

	var warning string
	seq := 0
	if seqStr := getCell(row, mapping.Sequence); seqStr != "" {
		if seq, err = strconv.Atoi(seqStr); err != nil {
			seq = 0
			warning = fmt.Sprintf("%s: Invalid sequence '%s', defaulting to 0", rowLabel, seqStr)
		}
	}

	line := model.ProductLine{
		ClientID:   id,
		ClientName: name,
		Order:      getCell(row, mapping.Order),
		Product:    product,
		Type:       model.DetectGlassType(product),
		Width:      width,
		Height:     height,
		Weight:     weight,
		Quantity:   qty,
		Sequence:   seq,
		City:       getCell(row, mapping.City),
	}
	if err := line.Validate(); err != nil {
		return model.ProductLine{}, fmt.Sprintf("%s: %v", rowLabel, err), ""
	}
	return line, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports a CSV or Excel file, chosen by extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// ImportUpload imports an uploaded file, using its name to pick the format.
func ImportUpload(name string, r io.Reader) ImportResult {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcelReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read upload: %v", err)}}
	}
	return ImportCSVData(data)
}

// ImportCSV imports product lines from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ImportCSVData(data)
}

// ImportCSVData imports product lines from CSV content.
func ImportCSVData(data []byte) ImportResult {
	result := ImportResult{}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ';' {
		delimName := map[rune]string{',': "comma", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports product lines from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports product lines from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

// ImportExcelReader imports product lines from Excel content.
func ImportExcelReader(r io.Reader) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

func importWorkbook(f *excelize.File) ImportResult {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It skips leading blank rows, maps columns from the header, and parses
// each remaining row into a product line.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	start := 0
	for start < len(rows) && isEmptyRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[start])
	if !hasHeader {
		result.Errors = append(result.Errors, "No header row found")
		return result
	}

	var missing []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{"Cliente", mapping.Client},
		{"Produto", mapping.Product},
		{"Qtde", mapping.Quantity},
		{"Largura", mapping.Width},
		{"Altura", mapping.Height},
		{"Peso Total", mapping.Weight},
	} {
		if col.idx == -1 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
		return result
	}
	if mapping.Sequence == -1 {
		result.Warnings = append(result.Warnings, "No sequence column, all lines share sequence 0")
	}

	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		line, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Lines = append(result.Lines, line)
	}

	if len(result.Lines) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
