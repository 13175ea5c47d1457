package s3minio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvatarStorageOwns(t *testing.T) {
	storage := New(nil, &Config{
		Bucket:    "avatars",
		PublicURL: "https://s3.testcraft.kg/",
	})

	uploaded := storage.ObjectURL("u1/photo.png")
	require.Equal(t, "https://s3.testcraft.kg/avatars/u1/photo.png", uploaded)
	require.True(t, storage.Owns(uploaded))

	require.False(t, storage.Owns("https://api.telegram.org/file/bot123/photo.jpg"))
	require.False(t, storage.Owns("https://s3.testcraft.kg/other-bucket/u1/photo.png"))
	require.False(t, storage.Owns(""))
}
