package validation

import "strings"

// StripTags removes '<' and '>' so free text cannot smuggle markup.
func StripTags(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}
