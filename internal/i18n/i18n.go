package i18n

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed lang_en.txt lang_id.txt
var catalogFS embed.FS

const defaultLang = "en"

// Cycle order
var supported = []string{"en", "id"}

// Catalog resolves UI strings for one language. Lookups fall back to
// English and then to the key itself.
type Catalog struct {
	lang     string
	strings  map[string]string
	fallback map[string]string
}

// Supported lists the available language codes
func Supported() []string {
	return append([]string(nil), supported...)
}

// IsSupported reports whether code has a catalog
func IsSupported(code string) bool {
	for _, lang := range supported {
		if lang == code {
			return true
		}
	}
	return false
}

// Load builds the catalog for lang; unsupported codes load English
func Load(lang string) *Catalog {
	if !IsSupported(lang) {
		lang = defaultLang
	}
	c := &Catalog{
		lang:     lang,
		fallback: parseFile(defaultLang),
	}
	if lang == defaultLang {
		c.strings = c.fallback
	} else {
		c.strings = parseFile(lang)
	}
	return c
}

// Lang returns the active language code
func (c *Catalog) Lang() string {
	return c.lang
}

// Cycle returns the catalog for the next language, wrapping at the end
func (c *Catalog) Cycle() *Catalog {
	for i, lang := range supported {
		if lang == c.lang {
			return Load(supported[(i+1)%len(supported)])
		}
	}
	return Load(defaultLang)
}

// T resolves key in the active language. Args, when given, are applied
// printf-style; templates without args are returned verbatim.
func (c *Catalog) T(key string, args ...interface{}) string {
	template, ok := c.strings[key]
	if !ok {
		template, ok = c.fallback[key]
	}
	if !ok {
		template = key
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// parseFile reads lang_<code>.txt. One KEY = value per line, the first
// = splits, # starts a comment. Unreadable catalogs come back empty so
// every lookup falls through to the fallback chain.
func parseFile(lang string) map[string]string {
	out := make(map[string]string)
	data, err := catalogFS.ReadFile("lang_" + lang + ".txt")
	if err != nil {
		return out
	}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimLeft(value, " \t")
	}
	return out
}
