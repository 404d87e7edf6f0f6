package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitImageRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		repo string
		tag  string
	}{
		{
			name: "bare repository",
			ref:  "nginx",
			repo: "nginx",
			tag:  "latest",
		},
		{
			name: "repository with tag",
			ref:  "nginx:1.27",
			repo: "nginx",
			tag:  "1.27",
		},
		{
			name: "namespaced repository",
			ref:  "library/postgres:16",
			repo: "library/postgres",
			tag:  "16",
		},
		{
			name: "registry with port and no tag",
			ref:  "registry.local:5000/app",
			repo: "registry.local:5000/app",
			tag:  "latest",
		},
		{
			name: "registry with port and tag",
			ref:  "registry.local:5000/app:v2",
			repo: "registry.local:5000/app",
			tag:  "v2",
		},
		{
			name: "trailing colon",
			ref:  "nginx:",
			repo: "nginx",
			tag:  "latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, tag := SplitImageRef(tt.ref)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.tag, tag)
		})
	}
}
