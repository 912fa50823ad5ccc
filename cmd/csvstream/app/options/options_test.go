package options

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/csvstream"
)

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{in: "", want: ','},
		{in: ",", want: ','},
		{in: ";", want: ';'},
		{in: "tab", want: '\t'},
		{in: "Space", want: ' '},
		{in: "TAB", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "\t", want: '\t'},
		{in: "pipe", want: '|'},
		{in: "semicolon", want: ';'},
		{in: `"`, wantErr: true},
		{in: "\n", wantErr: true},
		{in: "\r", wantErr: true},
		{in: "::", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseDelimiter(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())

	o.Delimiter = `"`
	o.OutDelimiter = "ab"
	o.FieldsPerRecord = -2
	errs := o.Validate()
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], csvstream.ErrInvalidDelim)
}

func newFlagSet(o *Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, NewOptions())
	o.AddOutputFlags(fs, NewOptions())
	return fs
}

func TestAddFlagsBindsOptions(t *testing.T) {
	o := NewOptions()
	fs := newFlagSet(o)
	require.NoError(t, fs.Parse([]string{"-d", ";", "--strict", "--fields-per-record=2", "-o", "tab"}))

	assert.Equal(t, ";", o.Delimiter)
	assert.True(t, o.Strict)
	assert.Equal(t, 2, o.FieldsPerRecord)
	assert.Equal(t, "tab", o.OutDelimiter)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delimiter: pipe\nstrict: true\nfields-per-record: 3\n"), 0o600))

	fs := newFlagSet(NewOptions())
	require.NoError(t, fs.Parse([]string{"--fields-per-record", "4"}))

	t.Setenv("CSVSTREAM_STRICT", "false")

	o := NewOptions()
	require.NoError(t, Load(o, fs, path))
	assert.Equal(t, "pipe", o.Delimiter)
	assert.False(t, o.Strict)
	assert.Equal(t, 4, o.FieldsPerRecord)
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	fs := newFlagSet(NewOptions())
	err := Load(NewOptions(), fs, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	fs := newFlagSet(NewOptions())
	require.NoError(t, fs.Parse([]string{"-d", "\n"}))
	err := Load(NewOptions(), fs, "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "delimiter"))
}

func TestNewReaderWriter(t *testing.T) {
	o := NewOptions()
	o.Delimiter = "tab"
	o.Strict = true
	o.FieldsPerRecord = 2

	r, err := o.NewReader(strings.NewReader("a\tb\n"))
	require.NoError(t, err)
	assert.Equal(t, byte('\t'), r.Comma)
	assert.True(t, r.Strict)
	assert.Equal(t, 2, r.FieldsPerRecord)

	var sb strings.Builder
	w, err := o.NewWriter(&sb)
	require.NoError(t, err)
	assert.Equal(t, byte('\t'), w.Comma)

	o.OutDelimiter = ";"
	w, err = o.NewWriter(&sb)
	require.NoError(t, err)
	assert.Equal(t, byte(';'), w.Comma)
}
