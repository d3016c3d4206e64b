// Package signature implements the gateway's shared-secret parameter digest.
//
// The digest is computed over the canonical form of a parameter set: the
// signature field and empty values are dropped, keys are sorted in byte
// order and joined as key=value pairs with '&' (no URL-encoding), then the
// secret is appended and the result hashed with MD5 (lowercase hex).
package signature

import (
	"bytes"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key is the parameter carrying the digest itself.
const Key = "signature"

// Params is a flat gateway parameter set.
type Params map[string]string

// Canonical returns the string the digest is computed over, without the secret.
func Canonical(params Params) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == Key || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// Sign computes the digest of params under secret.
func Sign(params Params, secret string) string {
	sum := md5.Sum([]byte(Canonical(params) + secret))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it with digest in constant time.
func Verify(params Params, secret, digest string) bool {
	if digest == "" {
		return false
	}
	expected := Sign(params, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(digest))) == 1
}

// VerifyParams checks the digest carried inside params itself.
func VerifyParams(params Params, secret string) bool {
	return Verify(params, secret, params[Key])
}

// ParamsFromJSON decodes a flat JSON object. Numbers keep their textual form,
// null values are dropped and nested values are rendered as compact JSON.
func ParamsFromJSON(body []byte) (Params, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	params := make(Params, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			params[k] = val
		case json.Number:
			params[k] = val.String()
		case bool:
			if val {
				params[k] = "true"
			} else {
				params[k] = "false"
			}
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("encode param %q: %w", k, err)
			}
			params[k] = string(encoded)
		}
	}
	return params, nil
}

// ParamsFromValues converts form values, keeping the first value of each key.
func ParamsFromValues(values url.Values) Params {
	params := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
