package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructEmpty(t *testing.T) {
	assert.Equal(t, "", Reconstruct(nil))
	assert.Equal(t, "", Reconstruct([]Fragment{}))
}

func TestReconstructSingleFragment(t *testing.T) {
	assert.Equal(t, "发票号码：12345678", Reconstruct([]Fragment{{Text: "发票号码：12345678", X: 10, Y: 700}}))
}

func TestReconstructLinesAndColumns(t *testing.T) {
	frags := []Fragment{
		// second line, deliberately out of order
		{Text: "名称：Globex", X: 400, Y: 600},
		{Text: "购买方", X: 10, Y: 601},
		{Text: "名称：ACME", X: 80, Y: 598},
		{Text: "销售方", X: 320, Y: 602},
		// first line
		{Text: "电子发票", X: 200, Y: 700},
		{Text: "（普通发票）", X: 240, Y: 700},
	}

	got := Reconstruct(frags)
	assert.Equal(t, "电子发票（普通发票）\n购买方\t名称：ACME\t销售方\t名称：Globex", got)
}

func TestReconstructLineToleranceBoundary(t *testing.T) {
	frags := []Fragment{
		{Text: "甲", X: 10, Y: 100},
		{Text: "乙", X: 20, Y: 95},   // |dy| == 5, same line
		{Text: "丙", X: 30, Y: 94.9}, // anchor is 100, so new line
	}
	assert.Equal(t, "甲乙\n丙", Reconstruct(frags))
}

func TestReconstructColumnGapBoundary(t *testing.T) {
	frags := []Fragment{
		{Text: "合计", X: 0, Y: 10},
		{Text: "¥100.00", X: 50, Y: 10},  // gap == 50, same column
		{Text: "¥13.00", X: 100.5, Y: 10}, // gap > 50, new column
	}
	assert.Equal(t, "合计¥100.00\t¥13.00", Reconstruct(frags))
}

func TestReconstructColumnRuns(t *testing.T) {
	tests := []struct {
		name  string
		frags []Fragment
		want  string
	}{
		{
			name:  "split digit run stays whole",
			frags: []Fragment{{Text: "发票号码：2532000", X: 0, Y: 0}, {Text: "00000012345678", X: 40, Y: 0}},
			want:  "发票号码：253200000000012345678",
		},
		{
			name:  "latin runs are not spaced",
			frags: []Fragment{{Text: "ACME", X: 0, Y: 0}, {Text: "Corp", X: 30, Y: 0}},
			want:  "ACMECorp",
		},
		{
			name:  "existing whitespace is kept",
			frags: []Fragment{{Text: "ACME ", X: 0, Y: 0}, {Text: "Corp", X: 30, Y: 0}},
			want:  "ACME Corp",
		},
		{
			name:  "cjk runs abut",
			frags: []Fragment{{Text: "西安华讯", X: 0, Y: 0}, {Text: "贸易有限公司", X: 40, Y: 0}},
			want:  "西安华讯贸易有限公司",
		},
		{
			name:  "cjk next to digits abuts",
			frags: []Fragment{{Text: "发票号码：", X: 0, Y: 0}, {Text: "24322000000012345678", X: 45, Y: 0}},
			want:  "发票号码：24322000000012345678",
		},
		{
			name:  "empty fragment contributes nothing",
			frags: []Fragment{{Text: "A", X: 0, Y: 0}, {Text: "", X: 10, Y: 0}, {Text: "B", X: 20, Y: 0}},
			want:  "AB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconstruct(tt.frags))
		})
	}
}

func TestReconstructChainedYSteps(t *testing.T) {
	// B is within tolerance of A, C is within tolerance of B but not of A.
	frags := []Fragment{
		{Text: "C", X: 0, Y: 94},
		{Text: "A", X: 10, Y: 100},
		{Text: "B", X: 20, Y: 97},
	}
	assert.Equal(t, "AB\nC", Reconstruct(frags))

	sorted := SortFragments(frags)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{sorted[0].Text, sorted[1].Text, sorted[2].Text})
}

func TestSortFragmentsDoesNotMutateInput(t *testing.T) {
	in := []Fragment{{Text: "b", X: 0, Y: 0}, {Text: "a", X: 0, Y: 100}}
	out := SortFragments(in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, "b", in[0].Text)
}

func TestBuildPageAndFullText(t *testing.T) {
	p1 := BuildPage(1, []Fragment{{Text: "第一页", X: 0, Y: 10}})
	p2 := BuildPage(2, []Fragment{{Text: "第二页", X: 0, Y: 10}})

	assert.Equal(t, 1, p1.Number)
	assert.Equal(t, "第一页", p1.Text)
	assert.Equal(t, "第一页\n第二页\n", FullText([]Page{p1, p2}))
	assert.Equal(t, "", FullText(nil))
}

func TestHasText(t *testing.T) {
	assert.False(t, HasText(nil))
	assert.False(t, HasText([]Page{BuildPage(1, []Fragment{{Text: "  ", X: 0, Y: 0}})}))
	assert.True(t, HasText([]Page{BuildPage(1, nil), BuildPage(2, []Fragment{{Text: "x"}})}))
}
