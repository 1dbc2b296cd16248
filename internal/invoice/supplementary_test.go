package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

func TestNormalize(t *testing.T) {
	in := "发票号码：１２３４５６７８\r\n合计\t\t（小写）￥ 100.00  \n  开票人：  张三"
	want := "发票号码:12345678\n合计 (小写)¥ 100.00\n开票人: 张三"
	assert.Equal(t, want, Normalize(in))
}

func TestResolveSupplementaryOnlyFillsMissing(t *testing.T) {
	text := "购买方：甲公司\n销售方：乙公司\n税额：¥11.50"
	var have Fields
	have[constants.BuyerName] = "已有买方"

	got := ResolveSupplementary(text, have)
	assert.Equal(t, "", got[constants.BuyerName])
	assert.Equal(t, "乙公司", got[constants.SellerName])
	assert.Equal(t, "11.50", got[constants.TaxAmount])
}

func TestResolveSupplementaryFullWidthLabels(t *testing.T) {
	got := ResolveSupplementary("收款人：李四\n复核人：王五\n商品名称：办公用品", Fields{})
	assert.Equal(t, "李四", got[constants.Payee])
	assert.Equal(t, "王五", got[constants.Reviewer])
	assert.Equal(t, "办公用品", got[constants.ItemName])
}

func TestResolveSupplementaryLineScan(t *testing.T) {
	text := "发票号码\n24612000000012345678\n开票日期\n2024-05-06\n价税合计\n¥113.00"
	got := ResolveSupplementary(text, Fields{})
	assert.Equal(t, "24612000000012345678", got[constants.InvoiceNumber])
	assert.Equal(t, "2024-05-06", got[constants.InvoiceDate])
	assert.Equal(t, "113.00", got[constants.TotalAmount])
}

func TestResolveSupplementaryRejectsOverlongValues(t *testing.T) {
	long := strings.Repeat("很", 101)
	got := ResolveSupplementary("销售方："+long, Fields{})
	assert.Equal(t, "", got[constants.SellerName])

	ok := strings.Repeat("很", 100)
	got = ResolveSupplementary("销售方："+ok, Fields{})
	assert.Equal(t, ok, got[constants.SellerName])
}
