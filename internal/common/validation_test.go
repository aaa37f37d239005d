package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name    string
		format  string
		formats []string
		wantErr string
	}{
		{name: "json accepted", format: "json", formats: supported},
		{name: "text accepted", format: "text", formats: supported},
		{name: "markdown accepted", format: "markdown", formats: supported},
		{
			name:    "unknown format rejected",
			format:  "xml",
			formats: supported,
			wantErr: "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:    "matching is case sensitive",
			format:  "JSON",
			formats: supported,
			wantErr: "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:    "empty format rejected",
			format:  "",
			formats: supported,
			wantErr: "unsupported output format ''. Supported formats: [json text markdown]",
		},
		{name: "empty list accepts anything", format: "xml", formats: []string{}},
		{
			name:    "single-entry list",
			format:  "text",
			formats: []string{"json"},
			wantErr: "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.formats)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "text", "markdown"},
		GetSupportedFormats([]string{"json", "text", "markdown"}))
	assert.Empty(t, GetSupportedFormats([]string{}))
}
