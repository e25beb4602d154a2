package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string `validate:"required,notblank"`
	Last4  string `validate:"required,last4"`
	Expiry string `validate:"required,yearmonth"`
}

func TestCustomTags(t *testing.T) {
	ok := sample{Name: "HDFC Millennia", Last4: "4312", Expiry: "2028-06"}
	assert.NoError(t, Validate.Struct(ok))

	for name, bad := range map[string]sample{
		"blank name":     {Name: "   ", Last4: "4312", Expiry: "2028-06"},
		"short last4":    {Name: "x", Last4: "431", Expiry: "2028-06"},
		"alpha last4":    {Name: "x", Last4: "43a2", Expiry: "2028-06"},
		"bad expiry":     {Name: "x", Last4: "4312", Expiry: "06/2028"},
		"expiry no month": {Name: "x", Last4: "4312", Expiry: "2028"},
	} {
		assert.Error(t, Validate.Struct(bad), name)
	}
}
