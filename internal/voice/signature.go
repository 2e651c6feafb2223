package voice

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ValidateTwilioSignature reports whether a gather callback was signed with
// the account auth token. Twilio signs the URL exactly as it dialed it, which
// may or may not include a default port, so both spellings are accepted.
//
// The request form is parsed as a side effect; handlers read SpeechResult and
// From from r.PostForm afterwards.
func ValidateTwilioSignature(r *http.Request, authToken, webhookURL string) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}
	for _, candidate := range signedURLVariants(webhookURL) {
		expected := computeSignature(buildSignaturePayload(candidate, r.PostForm), authToken)
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return true
		}
	}
	return false
}

// signedURLVariants returns raw plus raw with its default port removed or
// added.
func signedURLVariants(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return []string{raw}
	}
	defaultPort := map[string]string{"http": "80", "https": "443"}[u.Scheme]
	if defaultPort == "" {
		return []string{raw}
	}
	alt := *u
	switch u.Port() {
	case defaultPort:
		alt.Host = u.Hostname()
	case "":
		alt.Host = u.Host + ":" + defaultPort
	default:
		return []string{raw}
	}
	return []string{raw, alt.String()}
}

// buildSignaturePayload is the URL followed by every POST parameter, sorted
// by key, as key+value pairs.
func buildSignaturePayload(webhookURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(webhookURL)
	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}
	return payload.String()
}

// computeSignature is base64(HMAC-SHA1(authToken, payload)).
func computeSignature(data, key string) string {
	h := hmac.New(sha1.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// webhookURL reconstructs the public URL Twilio signed. A configured public
// base wins over forwarded headers.
func webhookURL(r *http.Request, publicBase string) string {
	if publicBase = strings.TrimRight(publicBase, "/"); publicBase != "" {
		return publicBase + r.URL.RequestURI()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, r.URL.RequestURI())
}
