package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "free", formatPrice(0))
	assert.Equal(t, "free", formatPrice(-1))
	assert.Equal(t, "0.99", formatPrice(99))
	assert.Equal(t, "9.99", formatPrice(999))
	assert.Equal(t, "59.00", formatPrice(5900))
}
