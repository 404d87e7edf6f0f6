package engine

import "strings"

// SplitImageRef splits a "repository[:tag]" reference into repository and
// tag, defaulting the tag to "latest" when absent. Only a colon after the
// last slash counts as a tag separator, so registry ports
// ("registry.local:5000/app") are not misparsed as tags.
func SplitImageRef(ref string) (repo, tag string) {
	repo, tag = ref, "latest"

	slash := strings.LastIndex(ref, "/")
	if colon := strings.LastIndex(ref, ":"); colon > slash {
		repo, tag = ref[:colon], ref[colon+1:]
	}
	if tag == "" {
		tag = "latest"
	}
	return repo, tag
}
