package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j…@a….io", MaskEmail(" Juan@Acme.io "))
	assert.Equal(t, "***", MaskEmail("abc"))
	assert.Equal(t, "", MaskEmail(""))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "ek_0123abcd…", MaskKey("ek_0123abcd4567ef89.deadbeefdeadbeef"))
	assert.Equal(t, "****", MaskKey("short"))
	assert.Equal(t, "eyJh…", MaskKey("eyJhbGciOiJIUzI1NiJ9"))
	assert.Empty(t, MaskKey(" "))
}
