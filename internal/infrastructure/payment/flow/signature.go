package flow

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// SignatureField carries the request or notification signature.
const SignatureField = "s"

// Params is a flat parameter set exchanged with the gateway.
// Nil values are treated as absent.
type Params map[string]any

// ParamsFromForm keeps the first value of every form key.
func ParamsFromForm(form url.Values) Params {
	params := make(Params, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}

// Values renders the params as url.Values, dropping nil entries.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		if s, ok := formatValue(v); ok {
			values.Set(k, s)
		}
	}
	return values
}

// String returns the value of key as the gateway would see it.
func (p Params) String(key string) string {
	s, _ := formatValue(p[key])
	return s
}

// Signer signs and verifies parameter sets with the merchant secret. The
// gateway hashes the canonical string with the secret appended; it is not an
// HMAC and must stay byte-exact.
type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the lowercase hex SHA-256 of the canonical params plus secret.
// The signature field itself is never part of the material.
func (s *Signer) Sign(params Params) string {
	sum := sha256.Sum256([]byte(canonicalize(params) + s.secret))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature over every field but SignatureField.
func (s *Signer) Verify(params Params) bool {
	provided, ok := formatValue(params[SignatureField])
	if !ok || provided == "" {
		return false
	}
	expected := s.Sign(params)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// SignParams returns a copy of params with SignatureField set.
func (s *Signer) SignParams(params Params) Params {
	signed := make(Params, len(params)+1)
	for k, v := range params {
		if k != SignatureField {
			signed[k] = v
		}
	}
	signed[SignatureField] = s.Sign(signed)
	return signed
}

// canonicalize sorts keys byte-wise and joins "key=value" pairs with "&".
func canonicalize(params Params) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == SignatureField {
			continue
		}
		if _, ok := formatValue(v); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		v, _ := formatValue(params[k])
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

// formatValue renders scalars without locale or exponent drift. ok is false
// for nil values.
func formatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case *int64:
		if val == nil {
			return "", false
		}
		return strconv.FormatInt(*val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
