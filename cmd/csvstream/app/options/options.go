package options

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream"
)

const (
	// DefaultConfigurationName is the config file base name, without extension.
	DefaultConfigurationName = "csvstream"
	// EnvPrefix prefixes environment overrides, e.g. CSVSTREAM_DELIMITER.
	EnvPrefix = "CSVSTREAM"
)

// Options configures the codec for every subcommand.
type Options struct {
	Delimiter       string `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`
	OutDelimiter    string `json:"out-delimiter,omitempty" yaml:"out-delimiter,omitempty" mapstructure:"out-delimiter"`
	Strict          bool   `json:"strict" yaml:"strict" mapstructure:"strict"`
	FieldsPerRecord int    `json:"fields-per-record" yaml:"fields-per-record" mapstructure:"fields-per-record"`
}

// NewOptions returns Options with the defaults: comma-delimited input, the
// same delimiter on output, lenient parsing and no field-count check.
func NewOptions() *Options {
	return &Options{
		Delimiter: ",",
	}
}

// AddFlags registers the input options on fs. Defaults come from s.
func (o *Options) AddFlags(fs *pflag.FlagSet, s *Options) {
	fs.StringVarP(&o.Delimiter, "delimiter", "d", s.Delimiter, "Input field delimiter: a single byte or one of tab, comma, semicolon, pipe, space.")
	fs.BoolVar(&o.Strict, "strict", s.Strict, "Reject bare quotes, bytes after a closing quote and unterminated quoted fields.")
	fs.IntVar(&o.FieldsPerRecord, "fields-per-record", s.FieldsPerRecord, "Require every record to have this many fields. 0 disables the check.")
}

// AddOutputFlags registers the output options on fs.
func (o *Options) AddOutputFlags(fs *pflag.FlagSet, s *Options) {
	fs.StringVarP(&o.OutDelimiter, "out-delimiter", "o", s.OutDelimiter, "Output field delimiter. Defaults to the input delimiter.")
}

// Validate reports every invalid option.
func (o *Options) Validate() []error {
	var errs []error
	if _, err := ParseDelimiter(o.Delimiter); err != nil {
		errs = append(errs, errors.Wrap(err, "delimiter"))
	}
	if o.OutDelimiter != "" {
		if _, err := ParseDelimiter(o.OutDelimiter); err != nil {
			errs = append(errs, errors.Wrap(err, "out-delimiter"))
		}
	}
	if o.FieldsPerRecord < 0 {
		errs = append(errs, fmt.Errorf("fields-per-record must not be negative, got %d", o.FieldsPerRecord))
	}
	return errs
}

// NewReader builds a Reader over src configured from o.
func (o *Options) NewReader(src io.Reader) (*csvstream.Reader, error) {
	comma, err := ParseDelimiter(o.Delimiter)
	if err != nil {
		return nil, err
	}
	r := csvstream.NewReader(src)
	r.Comma = comma
	r.Strict = o.Strict
	r.FieldsPerRecord = o.FieldsPerRecord
	return r, nil
}

// NewWriter builds a Writer over dst using the output delimiter, falling back
// to the input delimiter.
func (o *Options) NewWriter(dst io.Writer) (*csvstream.Writer, error) {
	delim := o.OutDelimiter
	if delim == "" {
		delim = o.Delimiter
	}
	comma, err := ParseDelimiter(delim)
	if err != nil {
		return nil, err
	}
	w := csvstream.NewWriter(dst)
	w.Comma = comma
	return w, nil
}

var delimiterNames = map[string]byte{
	"tab":       '\t',
	`\t`:        '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
	"space":     ' ',
}

// ParseDelimiter turns a delimiter option into a byte. An empty value means comma.
func ParseDelimiter(s string) (byte, error) {
	if s == "" {
		return csvstream.DefaultComma, nil
	}
	if c, ok := delimiterNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("delimiter %q is not a single byte", s)
	}
	c := s[0]
	if csvstream.NeedsQuote([]byte{c}, 0) {
		return 0, errors.Wrapf(csvstream.ErrInvalidDelim, "delimiter %q", s)
	}
	return c, nil
}

// Load fills o from the config file, CSVSTREAM_* environment variables and
// the flags in fs, in increasing order of precedence. A missing config file is
// not an error unless configFile names it explicitly.
func Load(o *Options, fs *pflag.FlagSet, configFile string) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigurationName)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigurationName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return errors.Wrap(err, "error parsing configuration file")
		}
		klog.V(4).Info("configuration file not found, using flags and environment")
	} else {
		klog.V(2).InfoS("Loaded configuration", "file", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	if err := v.Unmarshal(o); err != nil {
		return errors.Wrap(err, "error unmarshal configuration")
	}
	return multierr.Combine(o.Validate()...)
}
