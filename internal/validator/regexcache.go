package validator

import (
	"regexp"
	"sync"
)

// RegexCache compiles "pattern"/"patternProperties" regular expressions
// once per pattern string for the lifetime of the process, guarded by its
// own mutex so it can be shared across documents without taking the
// server's document/schema lock. This is a deliberate divergence from the
// teacher library's per-schema-node cache (pattern.go's
// schema.compiledStringPattern): schemas here are shared across many
// documents and re-parsed whenever a schema document changes, so keying by
// pattern string avoids recompiling the same regex under a different
// Schema pointer.
type RegexCache struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
	errs  map[string]error
}

func NewRegexCache() *RegexCache {
	return &RegexCache{
		cache: make(map[string]*regexp.Regexp),
		errs:  make(map[string]error),
	}
}

// Get returns the compiled regexp for pattern, compiling and caching it on
// first use. A pattern that fails to compile is cached as an error so
// repeated validations against the same bad schema don't re-attempt
// compilation every time.
func (c *RegexCache) Get(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.cache[pattern]; ok {
		return re, nil
	}
	if err, ok := c.errs[pattern]; ok {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		c.errs[pattern] = err
		return nil, err
	}
	c.cache[pattern] = re
	return re, nil
}

// Matches reports whether s matches pattern, treating a pattern compile
// failure as a non-match and returning the compile error. No caller turns
// that error into a diagnostic: the pattern keyword logs it and is skipped,
// and patternProperties ignores it.
func (c *RegexCache) Matches(pattern, s string) (bool, error) {
	re, err := c.Get(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
