package etcd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

func TestExtractFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tokens    []string
		spec      etcd.FlagSpec
		wantFound bool
		wantValue string
		wantRest  []string
	}{
		{
			name:      "absent flag leaves list untouched",
			tokens:    []string{"a", "b"},
			spec:      etcd.FlagSpec{Name: "-x"},
			wantFound: false,
			wantRest:  []string{"a", "b"},
		},
		{
			name:      "nullary flag is removed",
			tokens:    []string{"a", "-x", "b"},
			spec:      etcd.FlagSpec{Name: "-x"},
			wantFound: true,
			wantRest:  []string{"a", "b"},
		},
		{
			name:      "unary flag takes its value",
			tokens:    []string{"-x", "v", "a", "b"},
			spec:      etcd.FlagSpec{Name: "-x", Unary: true},
			wantFound: true,
			wantValue: "v",
			wantRest:  []string{"a", "b"},
		},
		{
			name:      "unary flag in last position",
			tokens:    []string{"a", "b", "-x"},
			spec:      etcd.FlagSpec{Name: "-x", Unary: true},
			wantFound: true,
			wantRest:  []string{"a", "b"},
		},
		{
			name:      "only the first occurrence is removed",
			tokens:    []string{"-x", "-x"},
			spec:      etcd.FlagSpec{Name: "-x"},
			wantFound: true,
			wantRest:  []string{"-x"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			original := append([]string(nil), testCase.tokens...)
			tokens := testCase.tokens

			found, value := etcd.ExtractFlag(&tokens, testCase.spec)
			assert.Equal(t, testCase.wantFound, found)
			assert.Equal(t, testCase.wantValue, value)
			assert.Equal(t, testCase.wantRest, tokens)
			assert.Equal(t, original, testCase.tokens)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSeparateArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		tokens      []string
		wantOptions []string
		wantQuery   []etcd.QueryArg
		wantErr     error
	}{
		{
			name: "empty",
		},
		{
			name:      "plain pairs",
			tokens:    []string{"ttl", "60", "prevExist", "false"},
			wantQuery: []etcd.QueryArg{{Name: "ttl", Value: "60"}, {Name: "prevExist", Value: "false"}},
		},
		{
			name:        "options anywhere without separator",
			tokens:      []string{"ttl", "-raw", "60", "-noval"},
			wantOptions: []string{etcd.OptRaw, etcd.OptNoValue},
			wantQuery:   []etcd.QueryArg{{Name: "ttl", Value: "60"}},
		},
		{
			name:      "unknown dash tokens are data",
			tokens:    []string{"prevValue", "-x"},
			wantQuery: []etcd.QueryArg{{Name: "prevValue", Value: "-x"}},
		},
		{
			name:        "separator protects data",
			tokens:      []string{"-raw", "--", "prevValue", "-noval"},
			wantOptions: []string{etcd.OptRaw},
			wantQuery:   []etcd.QueryArg{{Name: "prevValue", Value: "-noval"}},
		},
		{
			name:      "separator only",
			tokens:    []string{"--"},
			wantQuery: nil,
		},
		{
			name:      "second separator is data",
			tokens:    []string{"--", "a", "--"},
			wantQuery: []etcd.QueryArg{{Name: "a", Value: "--"}},
		},
		{
			name:    "unknown option before separator",
			tokens:  []string{"-bogus", "--", "a", "b"},
			wantErr: etcd.ErrUnknownOption,
		},
		{
			name:    "odd query tokens",
			tokens:  []string{"ttl"},
			wantErr: etcd.ErrOddQueryArguments,
		},
		{
			name:    "flag spelled value makes the list odd",
			tokens:  []string{"prevValue", "-raw"},
			wantErr: etcd.ErrOddQueryArguments,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			args, err := etcd.SeparateArgs(testCase.tokens, etcd.WriteFlags...)
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, args.Options, len(testCase.wantOptions))

			for _, name := range testCase.wantOptions {
				assert.True(t, args.Has(name), name)
			}

			assert.Equal(t, testCase.wantQuery, args.Query)
		})
	}
}

func TestSeparateArgs_RestrictedFlags(t *testing.T) {
	t.Parallel()

	// -noval is not a read option, so it stays data.
	args, err := etcd.SeparateArgs([]string{"-noval", "x"}, etcd.ReadFlags...)
	require.NoError(t, err)
	assert.False(t, args.Has(etcd.OptNoValue))
	assert.Equal(t, []etcd.QueryArg{{Name: "-noval", Value: "x"}}, args.Query)

	_, err = etcd.SeparateArgs([]string{"-noval", "--"}, etcd.DeleteFlags...)
	require.ErrorIs(t, err, etcd.ErrUnknownOption)
}

func TestSeparateArgs_UnaryOption(t *testing.T) {
	t.Parallel()

	spec := etcd.FlagSpec{Name: "-wait", Unary: true}

	args, err := etcd.SeparateArgs([]string{"-wait", "5s", "--", "a", "b"}, spec)
	require.NoError(t, err)
	assert.Equal(t, "5s", args.Value("-wait"))
	assert.Equal(t, []string{"a", "b"}, args.QueryTokens())
}

func TestArgs_PrependQuery(t *testing.T) {
	t.Parallel()

	args, err := etcd.SeparateArgs([]string{"ttl", "5"})
	require.NoError(t, err)

	args.PrependQuery("value", "v")
	args.AddQuery("dir", "true")

	assert.Equal(t, []string{"value", "v", "ttl", "5", "dir", "true"}, args.QueryTokens())
}
