package dialogue

import (
	"regexp"
	"strings"
)

// NamePlaceholder keeps prompts grammatical when no name was heard.
const NamePlaceholder = "there"

var (
	introPattern = regexp.MustCompile(`(?i)\b(my name is|my name's|i'm|i am|it's|its|this is)\b`)
	phonePattern = regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)

	// contactPhrasePattern matches the wording people wrap around a phone
	// number ("my number's", "you can reach me at", "John here").
	contactPhrasePattern = regexp.MustCompile(`(?i)\b(?:my\s+)?(?:(?:phone|cell|mobile)\s+)?number(?:['’]s|\s+is)?\b|\b(?:you\s+can\s+)?(?:reach|call|text)\s+me\s+(?:at|on)\b|\bhere\b`)
	leadInPattern        = regexp.MustCompile(`(?i)^\s*(?:sure|ok|okay|yes|yeah|yep)\b[\s,.!]*`)
)

// callbackPatterns matches users asking to be phoned instead of chatting.
var callbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcall\s*(me\s*)?(back|please)\b`),
	regexp.MustCompile(`(?i)\bcallback\b`),
	regexp.MustCompile(`(?i)\bprefer\s*(a\s*)?call\b`),
	regexp.MustCompile(`(?i)\brather\s*(talk|speak|call)\b`),
	regexp.MustCompile(`(?i)\bcan\s*(you|someone)\s*call\s*(me)?\b`),
	regexp.MustCompile(`(?i)\bwant\s*(a\s*)?call\b`),
	regexp.MustCompile(`(?i)\bjust\s*call\b`),
	regexp.MustCompile(`(?i)\bphone\s*call\b`),
	regexp.MustCompile(`(?i)\bspeak\s*(to|with)\s*(someone|a\s*person|a\s*specialist)\b`),
	regexp.MustCompile(`(?i)\btalk\s*(to|with)\s*(someone|a\s*person|a\s*specialist)\b`),
}

// ExtractName strips self-introduction phrases and keeps at most two words.
// An empty remainder yields NamePlaceholder.
func ExtractName(utterance string) string {
	if name := extractName(utterance); name != "" {
		return name
	}
	return NamePlaceholder
}

func extractName(utterance string) string {
	cleaned := introPattern.ReplaceAllString(utterance, " ")
	var words []string
	for _, w := range strings.Fields(cleaned) {
		w = strings.Trim(w, ".,!?;:\"")
		if w == "" || strings.ContainsAny(w, "0123456789") {
			continue
		}
		words = append(words, w)
		if len(words) == 2 {
			break
		}
	}
	return strings.Join(words, " ")
}

// ExtractPhone finds a North American phone number in free text and returns
// it as the user typed it, or "" when none is present.
func ExtractPhone(text string) string {
	match := strings.TrimSpace(phonePattern.FindString(text))
	if match == "" {
		return ""
	}
	digits := digitsOnly(match)
	if len(digits) == 10 || (len(digits) == 11 && digits[0] == '1') {
		return match
	}
	return ""
}

// IsCallbackRequest reports whether the user asked to be called back.
func IsCallbackRequest(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}
	for _, pat := range callbackPatterns {
		if pat.MatchString(message) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
