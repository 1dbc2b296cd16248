package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

const (
	buyerTaxID  = "91610131MA6U0ABCDE"
	sellerTaxID = "91610113MA7G1XYZ12"
)

func TestResolveTabularFourColumnRow(t *testing.T) {
	got := ResolveTabular("购买方\t名称：ACME\t销售方\t名称：Globex")
	assert.Equal(t, "ACME", got[constants.BuyerName])
	assert.Equal(t, "Globex", got[constants.SellerName])
}

func TestResolveTabularCompressedLine(t *testing.T) {
	got := ResolveTabular("买名 称:个人 售名 称:西安华讯得贸易有限公司")
	assert.Equal(t, "个人", got[constants.BuyerName])
	assert.Equal(t, "西安华讯得贸易有限公司", got[constants.SellerName])
	assert.Equal(t, "", got[constants.BuyerTaxID])
}

func TestFourColumnNames(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantBuyer  string
		wantSeller string
	}{
		{"label and value in one cell", "购买方名称：甲公司\t销售方名称：乙公司", "甲公司", "乙公司"},
		{"value in neighbour column", "购买方名称：\t甲公司\t销售方名称：\t乙公司", "甲公司", "乙公司"},
		{"neighbour that is a label is skipped", "购名称：\t销售方\t名称：乙公司", "", "乙公司"},
		{"unsided name columns are taken in order", "名称：甲公司\t名称：乙公司", "甲公司", "乙公司"},
		{"spaced compressed cells", "买名 称:个人\t售名 称:西安华讯得贸易有限公司", "个人", "西安华讯得贸易有限公司"},
		{"item header is not a party row", "项目名称\t规格型号\t单位", "", ""},
		{"no tab", "购买方名称：甲公司 销售方名称：乙公司", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, s := fourColumnNames(splitLines(tt.line))
			assert.Equal(t, tt.wantBuyer, b)
			assert.Equal(t, tt.wantSeller, s)
		})
	}
}

func TestLooseNames(t *testing.T) {
	lines := splitLines("销售方：西安华讯得贸易有限公司 地址：西安市\n项目名称：购买方测试\n购买方：张三 电话：123")
	b, s := looseNames(lines)
	assert.Equal(t, "张三", b)
	assert.Equal(t, "西安华讯得贸易有限公司", s)
}

func TestEntityNames(t *testing.T) {
	text := "开票信息\n北京甲乙科技有限公司\n销售单位 上海丙丁贸易有限公司\n"
	b, s := entityNames(text, "", "")
	assert.Equal(t, "北京甲乙科技有限公司", b)
	assert.Equal(t, "上海丙丁贸易有限公司", s)

	b, s = entityNames(text, "北京甲乙科技有限公司", "")
	assert.Equal(t, "", b)
	assert.Equal(t, "上海丙丁贸易有限公司", s)
}

func TestResolvePartyNamesFallsBackPerSide(t *testing.T) {
	text := "购买方\t名称：ACME\n销售方：西安华讯得贸易有限公司 地址：西安市"
	b, s := resolvePartyNames(text, splitLines(text))
	assert.Equal(t, "ACME", b)
	assert.Equal(t, "西安华讯得贸易有限公司", s)
}

func TestResolveTaxIDs(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantBuyer  string
		wantSeller string
	}{
		{
			name:       "two tokens near labels",
			text:       "购买方信息\n纳税人识别号：" + buyerTaxID + "\n销售方信息\n纳税人识别号：" + sellerTaxID,
			wantBuyer:  buyerTaxID,
			wantSeller: sellerTaxID,
		},
		{
			name:      "single token goes to buyer",
			text:      "统一社会信用代码/纳税人识别号：" + buyerTaxID,
			wantBuyer: buyerTaxID,
		},
		{
			name:       "tab delimited row is positional",
			text:       "纳税人识别号：\t" + buyerTaxID + "\t纳税人识别号：\t" + sellerTaxID,
			wantBuyer:  buyerTaxID,
			wantSeller: sellerTaxID,
		},
		{
			name:       "right half columns all go to seller",
			text:       "纳税人识别号\t纳税人识别号\t" + buyerTaxID + "\t" + sellerTaxID,
			wantSeller: buyerTaxID,
		},
		{
			name:       "standalone token fills seller",
			text:       "纳税人识别号：" + buyerTaxID + "\n名称：乙公司\n地址：西安\n" + sellerTaxID + "\n",
			wantBuyer:  buyerTaxID,
			wantSeller: sellerTaxID,
		},
		{
			name: "longer runs are not tax ids",
			text: "纳税人识别号：" + buyerTaxID + "99",
		},
		{
			name: "tokens far from labels are ignored",
			text: buyerTaxID + "X\n说明\n其他\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, s := resolveTaxIDs(splitLines(tt.text))
			assert.Equal(t, tt.wantBuyer, b)
			assert.Equal(t, tt.wantSeller, s)
		})
	}
}

func TestResolveTabularClearsIndividualBuyerTaxID(t *testing.T) {
	text := "购买方\t名称：张三（个人）\t销售方\t名称：乙公司\n纳税人识别号：" + buyerTaxID + "\t纳税人识别号：" + sellerTaxID
	got := ResolveTabular(text)
	assert.Equal(t, "张三（个人）", got[constants.BuyerName])
	assert.Equal(t, "", got[constants.BuyerTaxID])
	assert.Equal(t, sellerTaxID, got[constants.SellerTaxID])
}

func TestResolveItemName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "starred category",
			text: "项目名称\t规格型号\t数量\n*纸制品*蓓秀黑金复方山茶油全包臀拉拉裤XXL码\tXXL\t1\n合计\t¥88.50",
			want: "纸制品",
		},
		{
			name: "plain first column after blanks and separators",
			text: "货物或应税劳务、服务名称\t金额\n\n-----\n技术服务费\t100.00\n合计\t100.00",
			want: "技术服务费",
		},
		{
			name: "totals row ends the table",
			text: "项目名称\t金额\n合计\t¥0.00\n办公用品\t1.00",
			want: "",
		},
		{
			name: "no item table",
			text: "发票号码：12345678",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveItemName(splitLines(tt.text)))
		})
	}
}

func TestResolveTabularBasicFields(t *testing.T) {
	text := "发票号码：24612000000012345678\n开票日期：2024年05月06日\n价税合计（大写）\t壹佰元整\t（小写）¥100.00\n开票人：张三"
	got := ResolveTabular(text)
	assert.Equal(t, "24612000000012345678", got[constants.InvoiceNumber])
	assert.Equal(t, "2024年05月06日", got[constants.InvoiceDate])
	assert.Equal(t, "100.00", got[constants.TotalAmount])
	assert.Equal(t, "壹佰元整", got[constants.TotalAmountChinese])
	assert.Equal(t, "张三", got[constants.Drawer])
	assert.Equal(t, "", got[constants.TaxAmount])
}
