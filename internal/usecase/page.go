package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

// hrefTTL is how long a resolved href is reused. A `page set` overwrite is
// visible once it lapses.
const hrefTTL = 10 * time.Second

// PageUsecase resolves a host + path to the hosted page content.
type PageUsecase struct {
	records RecordRepository
	fetcher PageFetcher
	cache   *cache.Cache
}

func NewPageUsecase(records RecordRepository, fetcher PageFetcher) *PageUsecase {
	return &PageUsecase{
		records: records,
		fetcher: fetcher,
		cache:   cache.New(hrefTTL, time.Minute),
	}
}

// PageFileName maps a request path to the stored file name: the last segment
// up to its first dot, "index" for the root. A trailing slash or a leading
// dot in the last segment yields an empty name.
func PageFileName(requestPath string) string {
	trimmed := strings.TrimLeft(requestPath, "/")
	if trimmed == "" {
		return domain.DefaultPageFile
	}
	last := trimmed[strings.LastIndex(trimmed, "/")+1:]
	stem, _, _ := strings.Cut(last, ".")
	return stem
}

type Page struct {
	Key  string
	Href string
	Body string
}

func (uc *PageUsecase) Resolve(ctx context.Context, host, requestPath string) (Page, error) {
	ctx, span := tracer.Start(ctx, "Page.Usecase.Resolve")
	defer span.End()

	rkey := handles.PageKey(host, PageFileName(requestPath))
	span.SetAttributes(attribute.String("rkey", rkey))
	page := Page{Key: rkey}

	href, found := uc.cache.Get(rkey)
	if found {
		page.Href = href.(string)
	} else {
		record, err := uc.records.GetPage(ctx, rkey)
		if err != nil {
			span.RecordError(err)
			return page, errors.Wrapf(err, "failed to fetch record for rkey: %s", rkey)
		}
		if record.Href == "" {
			return page, errors.Wrapf(domain.NotFoundError{Resource: "href"}, "no href found for rkey: %s", rkey)
		}
		page.Href = record.Href
		uc.cache.Set(rkey, record.Href, cache.DefaultExpiration)
	}

	body, err := uc.fetcher.Fetch(ctx, page.Href)
	if err != nil {
		span.RecordError(err)
		return page, errors.Wrapf(err, "failed to fetch page from href: %s", page.Href)
	}
	page.Body = body

	return page, nil
}
