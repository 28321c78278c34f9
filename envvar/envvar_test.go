package envvar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetString(t *testing.T) {
	type test struct {
		name     string
		set      bool
		value    string
		expected string
		ok       bool
	}

	tests := []*test{
		{name: "Valid", set: true, value: "sqlite", expected: "sqlite", ok: true},
		{name: "Trimmed", set: true, value: "  pebble ", expected: "pebble", ok: true},
		{name: "Blank", set: true, value: "   "},
		{name: "NotSet"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set {
				t.Setenv("LOGSTORE_TEST_STRING", test.value)
			}

			val, ok := GetString("LOGSTORE_TEST_STRING")
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expected, val)
		})
	}
}

func TestGetInt(t *testing.T) {
	type test struct {
		name     string
		value    string
		expected int
		ok       bool
	}

	tests := []*test{
		{name: "Valid", value: "100", expected: 100, ok: true},
		{name: "Negative", value: "-3", expected: -3, ok: true},
		{name: "NotAnInt", value: "one hundred"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("LOGSTORE_TEST_INT", test.value)

			val, ok := GetInt("LOGSTORE_TEST_INT")
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expected, val)
		})
	}

	t.Run("NotSet", func(t *testing.T) {
		val, ok := GetInt("LOGSTORE_TEST_INT_UNSET")
		require.False(t, ok)
		require.Zero(t, val)
	})
}

func TestGetBool(t *testing.T) {
	t.Setenv("LOGSTORE_TEST_BOOL", "true")

	val, ok := GetBool("LOGSTORE_TEST_BOOL")
	require.True(t, ok)
	require.True(t, val)

	t.Setenv("LOGSTORE_TEST_BOOL", "maybe")

	val, ok = GetBool("LOGSTORE_TEST_BOOL")
	require.False(t, ok)
	require.False(t, val)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("LOGSTORE_TEST_DURATION", "36h")

	val, ok := GetDuration("LOGSTORE_TEST_DURATION")
	require.True(t, ok)
	require.Equal(t, 36*time.Hour, val)

	t.Setenv("LOGSTORE_TEST_DURATION", "daily")

	val, ok = GetDuration("LOGSTORE_TEST_DURATION")
	require.False(t, ok)
	require.Zero(t, val)
}
