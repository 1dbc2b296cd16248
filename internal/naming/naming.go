// Package naming builds standardized invoice file names.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-renamer/constants"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
)

const (
	// Unknown stands in for a missing party name.
	Unknown = "未知"
	// DefaultMaxLength caps the file name, extension excluded, in runes.
	DefaultMaxLength = 180
	extension        = ".pdf"
)

var (
	illegalChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

type Options struct {
	MaxLength int // 0 = DefaultMaxLength
}

// FileName renders "{buyer} {seller} {amount}元 （发票号：{number}）.pdf".
// Missing names become Unknown and a missing amount becomes 0.
func FileName(rec invoice.Record, opts Options) string {
	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	buyer := orUnknown(Sanitize(rec.Fields[constants.BuyerName]))
	seller := orUnknown(Sanitize(rec.Fields[constants.SellerName]))
	tail := fmt.Sprintf(" %s元 （发票号：%s）", FormatAmount(rec.Fields[constants.TotalAmount]), Sanitize(rec.Fields[constants.InvoiceNumber]))

	// Party names give way first when the name is too long.
	room := maxLen - utf8.RuneCountInString(tail) - 1
	if utf8.RuneCountInString(buyer)+utf8.RuneCountInString(seller) > room {
		half := max(room/2, 1)
		buyer = truncate(buyer, half)
		seller = truncate(seller, max(room-utf8.RuneCountInString(buyer), 1))
	}
	return buyer + " " + seller + tail + extension
}

// Sanitize replaces characters that are illegal in file names and folds
// whitespace runs to one space.
func Sanitize(s string) string {
	s = illegalChars.ReplaceAllString(s, "_")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.Trim(s, " .")
}

// FormatAmount drops insignificant decimals: "213.00" -> "213", "5.50" -> "5.5".
func FormatAmount(amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "0"
	}
	for _, r := range amount {
		if !unicode.IsDigit(r) && r != '.' {
			return Sanitize(amount)
		}
	}
	if strings.Contains(amount, ".") {
		amount = strings.TrimRight(strings.TrimRight(amount, "0"), ".")
	}
	if amount == "" {
		return "0"
	}
	return amount
}

// UniquePath returns path, or path with " (n)" before the extension for the
// smallest n >= 1 that exists reports as free.
func UniquePath(path string, exists func(string) bool) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

// RenameFile moves src to its standardized name in the same directory and
// returns the new path. The source extension is kept. A file already carrying
// that name is left alone.
func RenameFile(src string, rec invoice.Record, opts Options) (string, error) {
	name := FileName(rec, opts)
	if ext := filepath.Ext(src); ext != "" && !strings.EqualFold(ext, extension) {
		name = strings.TrimSuffix(name, extension) + ext
	}
	target := filepath.Join(filepath.Dir(src), name)
	if target == src {
		return src, nil
	}
	target = UniquePath(target, fileExists)
	if err := os.Rename(src, target); err != nil {
		return "", fmt.Errorf("rename %s: %w", filepath.Base(src), err)
	}
	return target, nil
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
