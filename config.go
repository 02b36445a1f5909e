package tcpoosc

import "fmt"

// Config is a typed key/value map modeled on the teacher's own
// configuration object: every value remembers the type it was last
// set with, and retrieving it as a different type panics rather than
// silently coercing. It holds the compiler-wide knobs named in
// SPEC_FULL.md's Ambient Stack section.
type Config map[string]*cfgVal

// NewConfig returns a configuration primed with the defaults the
// parser and task transformation rely on when the caller doesn't
// override them.
func NewConfig() *Config {
	c := make(Config)
	c.SetInt("parser.tab_size", 8)
	c.SetInt("parser.max_expectations", 200)
	c.SetInt("parser.ident_max_len", 64)
	c.SetBool("transform.strict", false)
	return &c
}

type cfgValType int

const (
	cfgUndefined cfgValType = iota
	cfgBool
	cfgInt
	cfgString
)

func (t cfgValType) String() string {
	switch t {
	case cfgBool:
		return "bool"
	case cfgInt:
		return "int"
	case cfgString:
		return "string"
	default:
		return "undefined"
	}
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (c *Config) set(path string, v *cfgVal) {
	(*c)[path] = v
}

func (c *Config) SetBool(path string, v bool) {
	c.set(path, &cfgVal{typ: cfgBool, asBool: v})
}

func (c *Config) SetInt(path string, v int) {
	c.set(path, &cfgVal{typ: cfgInt, asInt: v})
}

func (c *Config) SetString(path string, v string) {
	c.set(path, &cfgVal{typ: cfgString, asString: v})
}

func (c *Config) GetBool(path string) bool {
	v := c.lookup(path, cfgBool)
	return v.asBool
}

func (c *Config) GetInt(path string) int {
	v := c.lookup(path, cfgInt)
	return v.asInt
}

func (c *Config) GetString(path string) string {
	v := c.lookup(path, cfgString)
	return v.asString
}

func (c *Config) lookup(path string, want cfgValType) *cfgVal {
	v, ok := (*c)[path]
	if !ok {
		panic(fmt.Sprintf("setting `%s` does not exist", path))
	}
	if v.typ != want {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` setting `%s`", want, v.typ, path))
	}
	return v
}
