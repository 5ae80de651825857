// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("HWC_TEST_STRING", "from-env")
	t.Setenv("HWC_TEST_STRING_EMPTY", "")

	assert.Equal(t, "from-env", ParseString("HWC_TEST_STRING", "default"))
	assert.Equal(t, "default", ParseString("HWC_TEST_STRING_EMPTY", "default"))
	assert.Equal(t, "default", ParseString("HWC_TEST_STRING_UNSET", "default"))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"valid", "42", 42},
		{"negative", "-3", -3},
		{"invalid falls back", "many", 7},
		{"empty falls back", "", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HWC_TEST_INT", tt.env)
			assert.Equal(t, tt.want, ParseInt("HWC_TEST_INT", 7))
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		env  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("HWC_TEST_BOOL", tt.env)
			assert.Equal(t, tt.want, ParseBool("HWC_TEST_BOOL", tt.def))
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("HWC_TEST_DUR", "150ms")
	assert.Equal(t, 150*time.Millisecond, ParseDuration("HWC_TEST_DUR", time.Second))

	t.Setenv("HWC_TEST_DUR", "soon")
	assert.Equal(t, time.Second, ParseDuration("HWC_TEST_DUR", time.Second))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("HWC_TEST_FLOAT", "59.94")
	assert.InDelta(t, 59.94, ParseFloat("HWC_TEST_FLOAT", 60), 1e-9)

	t.Setenv("HWC_TEST_FLOAT", "fast")
	assert.Equal(t, float64(60), ParseFloat("HWC_TEST_FLOAT", 60))
}

func TestParseList(t *testing.T) {
	def := []string{"video"}

	t.Setenv("HWC_TEST_LIST", " ui_mirror,, multi_layer ")
	assert.Equal(t, []string{"ui_mirror", "multi_layer"}, ParseList("HWC_TEST_LIST", def))

	t.Setenv("HWC_TEST_LIST", " , ")
	assert.Equal(t, def, ParseList("HWC_TEST_LIST", def))
}
