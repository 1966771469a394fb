package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantProd bool
		wantRest []string
		wantErr  bool
	}{
		{"dev", []string{"--dev"}, false, []string{}, false},
		{"short prod", []string{"-p", "file.json"}, true, []string{"file.json"}, false},
		{"separator", []string{"--prod", "--", "SELECT", "1"}, true, []string{"SELECT", "1"}, false},
		{"missing", nil, false, nil, true},
		{"unknown", []string{"--staging"}, false, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isProd, rest, err := parseEnvFlag(tt.args)
			if tt.wantErr {
				assert.EqualError(t, err, "must provide argument --dev or --prod")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProd, isProd)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestParseIndex(t *testing.T) {
	i, err := parseIndex("2")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = parseIndex("-1")
	assert.Error(t, err)
	_, err = parseIndex("two")
	assert.Error(t, err)
}
