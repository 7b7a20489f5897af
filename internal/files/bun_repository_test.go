package files_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/migrations"
	"github.com/goliatone/go-manual/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
)

func TestFileRepository_WithBunAndCache(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, migrations.Migrate)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}

	svc := files.NewService(
		files.NewBunFileRepositoryWithCache(db, cacheSvc, repocache.NewDefaultKeySerializer()),
		files.NewMemoryBlobStore(),
		files.WithNow(func() time.Time { return fixedNow }),
	)

	file, err := svc.Upload(ctx, files.UploadInput{Name: "manual.pdf", UploadedBy: uploader, Body: strings.NewReader("pdf")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	url, err := svc.DownloadURL(ctx, file.Key)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if url != "/files/"+file.ID.String() {
		t.Fatalf("unexpected url %q", url)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != file.Checksum {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := svc.Delete(ctx, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	count, err := db.NewSelect().Model((*files.File)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected file row removed, got %d", count)
	}

	var nf *files.NotFoundError
	repo := files.NewBunFileRepository(db)
	if _, err := repo.GetByKey(ctx, "uploads/none"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
