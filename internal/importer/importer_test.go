package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

const sampleHeader = "Cliente;Pedido Cliente;Produto;Produto Descrição;Qtde;Largura;Altura;Peso Total;Sequência;Cidade"

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte(sampleHeader + "\n6765 – Vidros Sul;P1;VT;Temperado 8mm;2;800;2000;45,5;1;Curitiba/PR\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Cliente,Produto,Qtde,Largura,Altura,Peso Total\n1 - A,VT,2,800,2000,45.5\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Cliente\tProduto\tQtde\tLargura\tAltura\tPeso Total\n1 - A\tVT\t2\t800\t2000\t45.5\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_PortugueseHeaders(t *testing.T) {
	row := strings.Split(sampleHeader, ";")
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	checks := map[string][2]int{
		"Client":      {mapping.Client, 0},
		"Order":       {mapping.Order, 1},
		"Product":     {mapping.Product, 2},
		"Description": {mapping.Description, 3},
		"Quantity":    {mapping.Quantity, 4},
		"Width":       {mapping.Width, 5},
		"Height":      {mapping.Height, 6},
		"Weight":      {mapping.Weight, 7},
		"Sequence":    {mapping.Sequence, 8},
		"City":        {mapping.City, 9},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("expected %s at %d, got %d", name, c[1], c[0])
		}
	}
	if mapping.TypeDescription != -1 {
		t.Errorf("expected no type description column, got %d", mapping.TypeDescription)
	}
}

func TestDetectColumns_CaseInsensitiveAndBOM(t *testing.T) {
	row := []string{"\ufeffCLIENTE", "PRODUTO", "QTDE", "LARGURA", "ALTURA", "PESO TOTAL", "SEQUENCIA"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Client != 0 {
		t.Errorf("expected Client at 0, got %d", mapping.Client)
	}
	if mapping.Sequence != 6 {
		t.Errorf("expected Sequence at 6, got %d", mapping.Sequence)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	_, isHeader := DetectColumns([]string{"6765 – A", "VT", "2", "800"})
	if isHeader {
		t.Error("expected no header for a data row")
	}
}

// ─── Cell parsing Tests ────────────────────────────────────

func TestParseClient(t *testing.T) {
	tests := []struct {
		cell, id, name string
	}{
		{"6765 – Vidros Sul Ltda", "6765", "Vidros Sul Ltda"},
		{"4022 - Box & Cia", "4022", "Box & Cia"},
		{"  103-Loja Centro ", "103", "Loja Centro"},
		{"Balcão", "Balcão", "Balcão"},
	}
	for _, tt := range tests {
		id, name := ParseClient(tt.cell)
		if id != tt.id || name != tt.name {
			t.Errorf("ParseClient(%q) = (%q, %q), want (%q, %q)", tt.cell, id, name, tt.id, tt.name)
		}
	}
}

func TestNormalizeWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"45,5", 45.5},
		{"45.5", 45.5},
		{"45500", 45.5},
		{"12", 0.012},
	}
	for _, tt := range tests {
		got, err := NormalizeWeight(tt.in)
		if err != nil {
			t.Errorf("NormalizeWeight(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeWeight(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := NormalizeWeight("abc"); err == nil {
		t.Error("expected error for non-numeric weight")
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_OriginalExport(t *testing.T) {
	data := sampleHeader + "\n" +
		"6765 – Vidros Sul;P-100;VT08;Temperado incolor;2;800;2000;45,5;2;Curitiba/PR\n" +
		"4022 - Box & Cia;P-101;LM;Laminado PVB 8mm;1;1000;1500;30000;1;Joinville/SC\n"

	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}

	first := result.Lines[0]
	if first.ClientID != "6765" || first.ClientName != "Vidros Sul" {
		t.Errorf("unexpected client %q / %q", first.ClientID, first.ClientName)
	}
	if first.Product != "VT08 Temperado incolor" {
		t.Errorf("expected product text joined with its description, got %q", first.Product)
	}
	if first.Type != model.GlassTempered {
		t.Errorf("expected Temperado, got %q", first.Type)
	}
	if first.Weight != 45.5 || first.Quantity != 2 || first.Sequence != 2 {
		t.Errorf("unexpected numbers: weight %v qty %d seq %d", first.Weight, first.Quantity, first.Sequence)
	}
	if first.City != "Curitiba/PR" || first.Order != "P-100" {
		t.Errorf("unexpected order/city %q / %q", first.Order, first.City)
	}

	second := result.Lines[1]
	if second.Type != model.GlassPVB {
		t.Errorf("expected PVB, got %q", second.Type)
	}
	if second.Weight != 30 {
		t.Errorf("expected grams converted to 30 kg, got %v", second.Weight)
	}
}

func TestImportCSVFromReader_TypeDescriptionFallback(t *testing.T) {
	data := "Cliente;Produto;Tipo Produto Descrição;Qtde;Largura;Altura;Peso Total\n" +
		"1 - A;CHAPA;TM2 REFLETIVO;1;500;600;10,0\n"

	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d (errors %v)", len(result.Lines), result.Errors)
	}
	if result.Lines[0].Type != model.GlassTM2 {
		t.Errorf("expected TM2, got %q", result.Lines[0].Type)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := sampleHeader + "\n" +
		";P;VT;;1;800;2000;10,0;1;X\n" +
		"1 - A;P;VT;;abc;800;2000;10,0;1;X\n" +
		"1 - A;P;VT;;1;wide;2000;10,0;1;X\n" +
		"1 - A;P;VT;;1;800;2000;heavy;1;X\n" +
		"1 - A;P;VT;;0;800;2000;10,0;1;X\n" +
		"1 - A;P;VT;;1;800;2000;10,0;later;X\n" +
		";;;;;;;;;\n"

	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(result.Lines))
	}
	if result.Lines[0].Sequence != 0 {
		t.Errorf("expected invalid sequence to default to 0, got %d", result.Lines[0].Sequence)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Errors[0], "Line 2") {
		t.Errorf("expected errors to name the line, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_MissingColumns(t *testing.T) {
	data := "Cliente;Produto;Qtde\n1 - A;VT;2\n"

	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	for _, col := range []string{"Largura", "Altura", "Peso Total"} {
		if !strings.Contains(result.Errors[0], col) {
			t.Errorf("expected %s in missing columns error, got %q", col, result.Errors[0])
		}
	}
}

func TestImportCSVFromReader_NoHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("1 - A;VT;2;800;2000;10,0\n"), ';')
	if len(result.Errors) != 1 || result.Errors[0] != "No header row found" {
		t.Errorf("expected missing header error, got %v", result.Errors)
	}
}

// ─── File import Tests ─────────────────────────────────────

func TestImportCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carga.csv")
	data := "Cliente,Produto,Qtde,Largura,Altura,Peso Total,Sequência\n9001 - A,VT,3,800,2000,60.0,1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportFile(path)

	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "comma") {
		t.Errorf("expected comma delimiter warning, got %v", result.Warnings)
	}
	if result.Lines[0].Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", result.Lines[0].Quantity)
	}
}

func TestImportCSV_MissingFile(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Cannot open file") {
		t.Errorf("expected open error, got %v", result.Errors)
	}
}

func TestImportCSVData_Empty(t *testing.T) {
	result := ImportCSVData([]byte("  \n"))
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
	if result.OK() {
		t.Error("empty import must not be OK")
	}
}

// ─── Excel Tests ───────────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	return f
}

var excelRows = [][]interface{}{
	{"Cliente", "Pedido Cliente", "Produto", "Qtde", "Largura", "Altura", "Peso Total", "Sequência"},
	{"6765 – Vidros Sul", "P-1", "Temperado 10mm", 4, 900, 2100, "80,0", 1},
	{"2925 - Obra Norte", "P-2", "Eco Glass 6mm", 2, 700, 1200, "25,0", 2},
}

func TestImportExcel_File(t *testing.T) {
	f := createTestExcel(t, excelRows)
	path := filepath.Join(t.TempDir(), "carga.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if result.Lines[0].Width != 900 || result.Lines[0].Quantity != 4 {
		t.Errorf("unexpected first line %+v", result.Lines[0])
	}
	if result.Lines[1].Type != model.GlassEco {
		t.Errorf("expected Eco Glass, got %q", result.Lines[1].Type)
	}
	if result.Lines[1].ClientID != "2925" {
		t.Errorf("expected client 2925, got %q", result.Lines[1].ClientID)
	}
}

func TestImportUpload_Excel(t *testing.T) {
	f := createTestExcel(t, excelRows)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write Excel file: %v", err)
	}

	result := ImportUpload("carga.XLSX", &buf)

	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(result.Lines))
	}
}

func TestImportUpload_CSV(t *testing.T) {
	data := sampleHeader + "\n6765 – Vidros Sul;P;VT;Temperado;1;800;2000;10,0;1;X\n"

	result := ImportUpload("carga.csv", strings.NewReader(data))

	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestImportExcel_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportExcel(path)
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}
