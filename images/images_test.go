package images_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/localchef-bazaar/gateway"
	"github.com/jrsteele09/localchef-bazaar/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := images.NewKey("/meals/", "Biryani.JPG")
	require.True(t, strings.HasPrefix(key, "meals/"))
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.NotEqual(t, key, images.NewKey("meals", "Biryani.JPG"))

	require.NotContains(t, images.NewKey("", "avatar"), "/")
}

func TestHostUploader(t *testing.T) {
	var gotKey, gotFile, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		gotFile = header.Filename
		gotContent = string(data)

		w.Header().Set("Content-Type", "application/json")
		switch gotContent {
		case "no-display":
			_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://i.host/raw.png"}}`))
		case "rejected":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://i.host/raw.png","display_url":"https://i.host/display.png"}}`))
		}
	}))
	defer server.Close()

	_, err := images.NewHostUploader("", "key")
	require.Error(t, err)
	_, err = images.NewHostUploader(server.URL, "")
	require.Error(t, err)

	uploader, err := images.NewHostUploader(server.URL+"/1/upload", "secret-key")
	require.NoError(t, err)

	t.Run("display url", func(t *testing.T) {
		url, err := uploader.Upload(context.Background(), "profiles/ana.png", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://i.host/display.png", url)
		assert.Equal(t, "secret-key", gotKey)
		assert.Equal(t, "ana.png", gotFile)
		assert.Equal(t, "png-bytes", gotContent)
	})

	t.Run("falls back to url", func(t *testing.T) {
		url, err := uploader.Upload(context.Background(), "a.png", strings.NewReader("no-display"))
		require.NoError(t, err)
		assert.Equal(t, "https://i.host/raw.png", url)
	})

	t.Run("host error", func(t *testing.T) {
		_, err := uploader.Upload(context.Background(), "a.png", strings.NewReader("rejected"))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, gateway.StatusCode(err))
	})
}

func TestS3Uploader(t *testing.T) {
	var lock sync.Mutex
	var gotMethod, gotPath, gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		lock.Lock()
		gotMethod, gotPath, gotType, gotBody = r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(data)
		lock.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := images.NewS3Uploader(images.S3Config{})
	require.Error(t, err)

	uploader, err := images.NewS3Uploader(images.S3Config{
		Bucket:          "meal-images",
		Region:          "eu-central-1",
		Endpoint:        server.URL,
		AccessKeyID:     "key-id",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	url, err := uploader.Upload(context.Background(), "meals/kacchi.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/meal-images/meals/kacchi.png", url)

	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/meal-images/meals/kacchi.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, gotBody, "png-bytes")
}

func TestS3Uploader_PublicBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	uploader, err := images.NewS3Uploader(images.S3Config{
		Bucket:        "meal-images",
		Endpoint:      server.URL,
		PublicBaseURL: "https://cdn.localchef.test/",
	})
	require.NoError(t, err)

	url, err := uploader.Upload(context.Background(), "a.jpg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.localchef.test/a.jpg", url)
}
