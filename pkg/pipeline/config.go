package pipeline

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacktree/pkg/errors"
)

// LoadOptions reads a TOML config file over [DefaultOptions]; keys the file
// omits keep their defaults. Unknown keys are rejected so typos surface.
//
//	viz_type = "tree"
//	formats  = ["svg", "png"]
//	style    = "dark"
//	fit      = true
//
//	[layout]
//	level_stride = 180
//
//	[palette]
//	module = "#2a9d8f"
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config %s", path)
	}
	defer f.Close()
	return DecodeOptions(f)
}

// DecodeOptions is [LoadOptions] for an open stream.
func DecodeOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.NewDecoder(r).Decode(&opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Options{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}
