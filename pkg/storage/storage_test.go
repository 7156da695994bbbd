package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		opts    S3Options
		want    string
		wantErr bool
	}{
		{
			name: "explicit base wins",
			opts: S3Options{Endpoint: "https://acc.r2.cloudflarestorage.com", Bucket: "media", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint is path style",
			opts: S3Options{Endpoint: "http://localhost:9000/", Region: "auto", Bucket: "media"},
			want: "http://localhost:9000/media",
		},
		{
			name: "plain aws",
			opts: S3Options{Region: "eu-west-1", Bucket: "media"},
			want: "https://media.s3.eu-west-1.amazonaws.com",
		},
		{
			name:    "aws without a region",
			opts:    S3Options{Region: "auto", Bucket: "media"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicBaseURL(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisabledUpload(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "posts/a.jpg", "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrDisabled)
}
