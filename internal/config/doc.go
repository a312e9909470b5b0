// Package config deliberately uses only the standard library. There is
// no configuration-file format to parse here — only a
// handful of runtime knobs, each a single scalar read from a single
// environment variable name — so there is nothing for a
// struct-tag/file-format library like pflag or a TOML/YAML decoder to
// do. Reaching for a library to replace seven os.LookupEnv/strconv
// calls would be the kind of needless dependency the module otherwise
// goes out of its way to avoid adding — see DESIGN.md.
package config
