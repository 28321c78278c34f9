package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiErrorStrings(t *testing.T) {
	type testCase struct {
		name      string
		errs      []error
		prefix    string
		separator string
		expected  string
	}

	cases := []testCase{
		{
			name:     "Empty",
			expected: "",
		},
		{
			name:      "EmptyCustomPrefixCustomSep",
			prefix:    "invalid schema: ",
			separator: "-",
			expected:  "",
		},
		{
			name:     "One",
			errs:     []error{fmt.Errorf("A")},
			expected: "A",
		},
		{
			name:     "Three",
			errs:     []error{fmt.Errorf("A"), fmt.Errorf("B"), fmt.Errorf("C")},
			expected: "A; B; C",
		},
		{
			name:      "ThreeCustomPrefixCustomSep",
			errs:      []error{fmt.Errorf("A"), fmt.Errorf("B"), fmt.Errorf("C")},
			prefix:    "invalid schema: ",
			separator: "-",
			expected:  "invalid schema: A-B-C",
		},
		{
			name:     "NilIgnored",
			errs:     []error{fmt.Errorf("A"), nil, fmt.Errorf("B")},
			expected: "A; B",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			me := MultiError{
				Prefix:    tc.prefix,
				Separator: tc.separator,
			}

			for _, err := range tc.errs {
				me.Add(err)
			}

			require.Equal(t, tc.expected, me.Error())
		})
	}
}

func TestMultiErrorErrOrNil(t *testing.T) {
	me := new(MultiError)
	require.Nil(t, me.ErrOrNil(), "received error when should have got nil")

	me.Add(fmt.Errorf("oh no"))
	require.Error(t, me.ErrOrNil(), "didn't get error when expected")
}

func TestMultiErrorAddSelf(t *testing.T) {
	var multiErr MultiError

	multiErr.Add(fmt.Errorf("oh no"))
	multiErr.Add(multiErr.ErrOrNil())

	require.Equal(t, "oh no", multiErr.Error())
}

type codedError struct{ code int }

func (c *codedError) Error() string { return fmt.Sprintf("code %d", c.code) }

func TestMultiErrorUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")

	var me MultiError

	me.Add(fmt.Errorf("wrapped: %w", sentinel))
	me.Add(&codedError{code: 7})

	err := me.ErrOrNil()
	require.ErrorIs(t, err, sentinel)

	var coded *codedError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, 7, coded.code)
}
