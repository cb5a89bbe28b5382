package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/explorevent/explorevent/internal/config"
	"github.com/explorevent/explorevent/internal/storage"
)

// Интеграционные тесты для пакета minio:
// — поднимают реальный MinIO через testcontainers-go;
// — создают бакет для картинок событий;
// — проверяют:
//    New: успешное подключение и ошибку при отсутствии бакета;
//    ImageUploadURL: выдачу presigned PUT и валидации по типу/размеру;
//    CheckImageUpload: подтверждение существующего объекта, сбор публичного URL,
//    и ошибки на "чужой" ключ/несуществующий объект;
//    RemoveImage: идемпотентное удаление.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

func startMinio(t *testing.T, createBucket bool) (*ImagesStorage, func(), string) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	const (
		image        = "docker.io/minio/minio:latest"
		rootUser     = "root"
		rootPassword = "rootpass"
		bucket       = "event-images"
	)
	req := tc.ContainerRequest{
		Image: image,
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data", "--console-address", ":9001"},
		ExposedPorts: []string{"9000/tcp", "9001/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting minio container with image=%q", image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")
	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	if createBucket {
		admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
			Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
			Secure: false,
		})
		require.NoError(t, err)
		err = admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"})
		require.NoError(t, err)
	}

	cfg := &config.Config{
		S3: config.S3Config{
			Endpoint:      endpoint,
			RootUser:      rootUser,
			RootPassword:  rootPassword,
			Bucket:        bucket,
			PresignTTL:    2 * time.Minute,
			PublicBaseURL: "http://cdn.local",
		},
		Image: config.ImageConfig{
			MaxSizeBytes:        1 << 20, // 1 MiB
			AllowedContentTypes: []string{"image/png", "image/jpeg", "image/webp"},
		},
	}

	st, newErr := New(ctx, cfg)
	if !createBucket {
		require.Error(t, newErr)
		_ = c.Terminate(context.Background())
		return nil, func() {}, ""
	}
	require.NoError(t, newErr)

	cleanup := func() {
		_ = c.Terminate(context.Background())
	}
	return st, cleanup, endpoint
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	// Без предварительного создания бакета New должен вернуть ошибку.
	_, _, _ = startMinio(t, false)
}

func TestIntegration_ImageUploadURL_And_CheckImageUpload_OK(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	const eventID = "66f0000000000000000000a1"

	const bodySize = 5
	ui, err := st.ImageUploadURL(context.Background(), eventID, "image/png", bodySize)
	require.NoError(t, err)
	require.NotEmpty(t, ui.UploadURL)
	require.NotEmpty(t, ui.ImageKey)
	require.Contains(t, ui.ImageKey, "events/"+eventID+"/")
	require.GreaterOrEqual(t, int(ui.Expires.Seconds()), 60)
	require.Equal(t, "image/png", ui.RequiredHeader["Content-Type"])
	require.Equal(t, strconv.Itoa(bodySize), ui.RequiredHeader["Content-Length"])

	body := bytes.Repeat([]byte{0x42}, bodySize)
	req, err := http.NewRequest(http.MethodPut, ui.UploadURL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")
	req.ContentLength = int64(bodySize)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Less(t, resp.StatusCode, 300, "PUT must succeed")

	public, err := st.CheckImageUpload(context.Background(), eventID, ui.ImageKey)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/"+ui.ImageKey, public)
}

func TestIntegration_ImageUploadURL_InvalidArgs(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	const eventID = "66f0000000000000000000a2"

	// Неверный тип.
	_, err := st.ImageUploadURL(context.Background(), eventID, "image/gif", 10)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrInvalidImage)

	// Неверный размер.
	_, err = st.ImageUploadURL(context.Background(), eventID, "image/png", -1)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrInvalidImage)

	// Больше лимита.
	_, err = st.ImageUploadURL(context.Background(), eventID, "image/png", (1<<20)+1)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrInvalidImage)
}

func TestIntegration_CheckImageUpload_Errors(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	const eventID = "66f0000000000000000000a3"
	const other = "66f0000000000000000000a4"

	// Ключ с "чужим" префиксом.
	_, err := st.CheckImageUpload(context.Background(), eventID, "events/"+other+"/x.png")
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrInvalidImage)

	// Не существует.
	_, err = st.CheckImageUpload(context.Background(), eventID, "events/"+eventID+"/missing.png")
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFoundImage)
}

func TestIntegration_CheckImageUpload_PublicBase_TrailingSlash_OK(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	const eventID = "66f0000000000000000000a5"
	ui, err := st.ImageUploadURL(context.Background(), eventID, "image/png", 1)
	require.NoError(t, err)

	// PUT 1 байт.
	req, err := http.NewRequest(http.MethodPut, ui.UploadURL, bytes.NewReader([]byte{0x1}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")
	req.ContentLength = 1
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)

	st.cfg.S3.PublicBaseURL = "http://cdn.local/"
	public, err := st.CheckImageUpload(context.Background(), eventID, ui.ImageKey)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/"+ui.ImageKey, public)
}

func TestIntegration_RemoveImage_Idempotent(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	const eventID = "66f0000000000000000000a6"
	ui, err := st.ImageUploadURL(context.Background(), eventID, "image/png", 1)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, ui.UploadURL, bytes.NewReader([]byte{0x1}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")
	req.ContentLength = 1
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)

	require.NoError(t, st.RemoveImage(context.Background(), ui.ImageKey))

	// Объекта больше нет.
	_, err = st.CheckImageUpload(context.Background(), eventID, ui.ImageKey)
	require.ErrorIs(t, err, storage.ErrNotFoundImage)

	// Повторное удаление и пустой ключ — no-op.
	require.NoError(t, st.RemoveImage(context.Background(), ui.ImageKey))
	require.NoError(t, st.RemoveImage(context.Background(), ""))
}

func TestIntegration_New_EndpointWithoutScheme_OK(t *testing.T) {
	st, cleanup, endpoint := startMinio(t, true)
	defer cleanup()
	_ = st

	u, err := url.Parse(endpoint)
	require.NoError(t, err)

	cfg2 := &config.Config{
		S3: config.S3Config{
			Endpoint:      u.Host,
			RootUser:      "root",
			RootPassword:  "rootpass",
			Bucket:        "event-images",
			PresignTTL:    1 * time.Minute,
			PublicBaseURL: "http://cdn.local",
		},
		Image: config.ImageConfig{
			MaxSizeBytes:        1 << 20,
			AllowedContentTypes: []string{"image/png"},
		},
	}

	s2, err := New(context.Background(), cfg2)
	require.NoError(t, err)
	_ = s2
}
