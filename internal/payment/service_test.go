package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusScheduled, StatusPaid, StatusFailed} {
		assert.True(t, validStatus(s), "expected %s to be valid", s)
	}

	assert.False(t, validStatus(""))
	assert.False(t, validStatus("pending"))
	assert.False(t, validStatus("PAID"))
}
