// Package i18n resolves dotted message keys against nested per-language dictionaries.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

const (
	// BaseLanguage is used when no stored or negotiated language is known.
	BaseLanguage = "en"
	// CookieName stores the visitor's language choice.
	CookieName = "lang"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Dictionary is the nested key to string mapping for one language.
type Dictionary map[string]any

// Language describes one selectable language.
type Language struct {
	Code string
	Name string
	Flag string
}

// Bundle holds every loaded dictionary.
type Bundle struct {
	dictionaries map[string]Dictionary
	languages    []Language
	tags         []language.Tag
	matcher      language.Matcher
}

// LoadEmbedded loads the dictionaries compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads locales/<code>.json files from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{dictionaries: make(map[string]Dictionary, len(paths))}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		var dict Dictionary
		if err := json.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}
		code := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("locale %s: invalid language code: %w", p, err)
		}
		b.dictionaries[code] = dict
	}

	if _, ok := b.dictionaries[BaseLanguage]; !ok {
		return nil, fmt.Errorf("base language %s is not defined", BaseLanguage)
	}

	codes := make([]string, 0, len(b.dictionaries))
	for code := range b.dictionaries {
		if code != BaseLanguage {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append([]string{BaseLanguage}, codes...)

	for _, code := range codes {
		dict := b.dictionaries[code]
		b.languages = append(b.languages, Language{
			Code: code,
			Name: lookupOr(dict, "meta.name", code),
			Flag: lookupOr(dict, "meta.flag", ""),
		})
		b.tags = append(b.tags, language.MustParse(code))
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Has reports whether code names a loaded dictionary.
func (b *Bundle) Has(code string) bool {
	if b == nil {
		return false
	}
	_, ok := b.dictionaries[code]
	return ok
}

// Languages returns the selectable languages, base language first.
func (b *Bundle) Languages() []Language {
	if b == nil {
		return nil
	}
	out := make([]Language, len(b.languages))
	copy(out, b.languages)
	return out
}

// Dictionary returns the raw dictionary for code, or the base dictionary.
func (b *Bundle) Dictionary(code string) Dictionary {
	if dict, ok := b.dictionaries[code]; ok {
		return dict
	}
	return b.dictionaries[BaseLanguage]
}

// Translator returns a translator bound to code. Unknown codes fall back to the base language.
func (b *Bundle) Translator(code string) *Translator {
	if !b.Has(code) {
		code = BaseLanguage
	}
	return &Translator{lang: code, dict: b.dictionaries[code]}
}

// Resolve picks the active language: a known stored code wins, then Accept-Language, then the base.
func (b *Bundle) Resolve(stored, acceptLanguage string) string {
	stored = strings.TrimSpace(stored)
	if b.Has(stored) {
		return stored
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := b.matcher.Match(tags...)
			if confidence != language.No {
				return b.languages[index].Code
			}
		}
	}
	return BaseLanguage
}

// Translator resolves keys for one language.
type Translator struct {
	lang string
	dict Dictionary
}

// Language returns the active language code.
func (t *Translator) Language() string {
	if t == nil {
		return BaseLanguage
	}
	return t.lang
}

// T resolves key, returning the key itself when it cannot be resolved.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	return Translate(t.dict, key)
}

// Translate walks dict one dotted segment at a time. A missing segment, a
// non-string leaf or an empty string yields the key unchanged.
func Translate(dict Dictionary, key string) string {
	value, ok := lookup(dict, key)
	if !ok {
		return key
	}
	return value
}

func lookup(dict Dictionary, key string) (string, bool) {
	var current any = map[string]any(dict)
	for _, segment := range strings.Split(key, ".") {
		level, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = level[segment]
		if !ok {
			return "", false
		}
	}
	text, ok := current.(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func lookupOr(dict Dictionary, key, fallback string) string {
	if value, ok := lookup(dict, key); ok {
		return value
	}
	return fallback
}
