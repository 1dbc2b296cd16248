package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-renamer/constants"
)

func TestFieldsAccessors(t *testing.T) {
	var fs Fields
	fs.Set(constants.SellerName, "乙公司")
	fs.Set(constants.FieldCount, "ignored")

	assert.Equal(t, "乙公司", fs.Get(constants.SellerName))
	assert.Equal(t, "", fs.Get(constants.Field(-1)))
	assert.Equal(t, 1, fs.Found())
	assert.Len(t, fs.Missing(), int(constants.FieldCount)-1)
	assert.NotContains(t, fs.Missing(), constants.SellerName)

	m := fs.Map()
	assert.Len(t, m, int(constants.FieldCount))
	assert.Equal(t, "乙公司", m["sellerName"])
}
