// Package redact keeps track of secret values seen during a run and masks
// them in anything written to a log or terminal sink.
package redact

import (
	"io"
	"sort"
	"strings"
	"sync"
)

// Mask replaces every registered secret in masked output.
const Mask = "*****"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"mfa_response":  {},
	"session_token": {},
	"sessiontoken":  {},
}

// IsSensitiveKey reports whether values stored under key are secrets.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// Registry is an append-only set of secret values. It is never cleared
// during a run.
type Registry struct {
	mu      sync.RWMutex
	secrets map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{secrets: make(map[string]struct{})}
}

// Add registers value as a secret.
func (r *Registry) Add(value string) {
	if value == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets[value] = struct{}{}
}

// AddKey registers value only when key names a sensitive setting.
func (r *Registry) AddKey(key, value string) {
	if IsSensitiveKey(key) {
		r.Add(value)
	}
}

// Len returns the number of registered secrets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.secrets)
}

// Mask returns s with every registered secret replaced by Mask.
// Longer secrets are replaced first so that a secret containing another
// one is not partially revealed.
func (r *Registry) Mask(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	secrets := make([]string, 0, len(r.secrets))
	for secret := range r.secrets {
		secrets = append(secrets, secret)
	}
	r.mu.RUnlock()

	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, Mask)
	}
	return s
}

// Writer wraps w so that everything written through it is masked.
func (r *Registry) Writer(w io.Writer) io.Writer {
	return &maskingWriter{w: w, registry: r}
}

type maskingWriter struct {
	w        io.Writer
	registry *Registry
}

// Write masks p before passing it on. It reports len(p) on success so that
// callers do not treat a shorter masked line as a short write.
func (m *maskingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(m.w, m.registry.Mask(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
