package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

func record(buyer, seller, amount, number string) invoice.Record {
	var rec invoice.Record
	rec.Fields[constants.BuyerName] = buyer
	rec.Fields[constants.SellerName] = seller
	rec.Fields[constants.TotalAmount] = amount
	rec.Fields[constants.InvoiceNumber] = number
	return rec
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		rec  invoice.Record
		want string
	}{
		{"complete", record("鲁遥", "创联教育", "213.00", "25617000000157293120"), "鲁遥 创联教育 213元 （发票号：25617000000157293120）.pdf"},
		{"placeholders", record("", "", "", ""), "未知 未知 0元 （发票号：）.pdf"},
		{"illegal characters", record("A/B公司", "C:D*", "5.50", "1"), "A_B公司 C_D_ 5.5元 （发票号：1）.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.rec, Options{}))
		})
	}
}

func TestFileNameLengthCap(t *testing.T) {
	long := strings.Repeat("长", 100)
	name := FileName(record(long, long, "1.00", "12345678"), Options{MaxLength: 60})
	stem := name[:len(name)-len(".pdf")]
	assert.LessOrEqual(t, utf8.RuneCountInString(stem), 60)
	assert.Contains(t, name, "（发票号：12345678）")
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{"": "0", "213.00": "213", "5.50": "5.5", "100": "100", "0.00": "0", " 7.10 ": "7.1"}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in), in)
	}
}

func TestUniquePath(t *testing.T) {
	taken := map[string]bool{"/x/a.pdf": true, "/x/a (1).pdf": true}
	exists := func(p string) bool { return taken[p] }
	assert.Equal(t, "/x/b.pdf", UniquePath("/x/b.pdf", exists))
	assert.Equal(t, "/x/a (2).pdf", UniquePath("/x/a.pdf", exists))
}

func TestRenameFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan001.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))
	rec := record("甲", "乙", "10.00", "12345678")

	// a file already holding the target name forces a suffix
	existing := filepath.Join(dir, FileName(rec, Options{}))
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	got, err := RenameFile(src, rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "甲 乙 10元 （发票号：12345678） (1).pdf"), got)
	assert.FileExists(t, got)
	assert.NoFileExists(t, src)
}

func TestRenameFileKeepsSourceExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(src, []byte("text"), 0o644))

	got, err := RenameFile(src, record("甲", "乙", "1", "9"), Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "甲 乙 1元 （发票号：9）.txt"), got)
}
